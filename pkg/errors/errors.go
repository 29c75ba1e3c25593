// Package errors defines the sentinel errors used across javup and small
// helpers to wrap them with context.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrConfigNotFound    = fmt.Errorf("config file not found")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrUnsupportedVendor = fmt.Errorf("unsupported vendor")

	// Metadata errors.
	ErrMetadataNotFound = fmt.Errorf("metadata file not found")
	ErrMetadataParse    = fmt.Errorf("failed to parse metadata")
	ErrVendorMismatch   = fmt.Errorf("metadata vendor does not match configured vendor")

	// Download errors.
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrChecksumMismatch = fmt.Errorf("checksum mismatch")
	ErrInvalidPath      = fmt.Errorf("invalid path")

	// Provisioning errors.
	ErrInstallationBusy = fmt.Errorf("installation is still in use")
	ErrIntegrity        = fmt.Errorf("failed to verify unpacked installation")

	// Remote metadata query errors.
	ErrUnexpectedResponse = fmt.Errorf("response has not the expected structure")
	ErrAmbiguousResponse  = fmt.Errorf("response is ambiguous")

	// Variable expansion errors.
	ErrVarNotFound = fmt.Errorf("variable not found")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
