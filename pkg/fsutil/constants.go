package fsutil

// File and directory permission constants.
// These follow standard Unix permission conventions and are used consistently
// throughout the application.
const (
	// FileModeMask is the full permission mask for files.
	FileModeMask = 0o777

	// FileModeDefault is the default mode for regular files (-rw-r--r--).
	FileModeDefault = 0o644
	// FileModeExec is the mode for executable files (-rwxr-xr-x).
	FileModeExec = 0o755

	// DirModeDefault is the default mode for directories (drwxr-xr-x).
	DirModeDefault = 0o755
	// DirModePrivate is the mode for private directories (drwx------).
	DirModePrivate = 0o700
)
