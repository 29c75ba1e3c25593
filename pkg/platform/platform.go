// Package platform provides constants and utilities for handling
// platform-specific information such as operating systems and architectures.
package platform

import (
	"runtime"
	"strings"
)

// HostOS returns the canonical name of the operating system this process
// runs on.
func HostOS() string {
	return NormalizeOS(runtime.GOOS)
}

// HostArch returns the canonical name of the architecture this process
// runs on.
func HostArch() string {
	return NormalizeArch(runtime.GOARCH)
}

// Family returns the platform family ("windows" or "unix") for the given
// canonical OS name.
func Family(os string) string {
	if NormalizeOS(os) == OSWindows {
		return FamilyWindows
	}
	return FamilyUnix
}

// NormalizeOS normalizes OS names to the canonical format.
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "darwin", "mac", "macos", "osx":
		return OSMacOS
	case "win", "windows":
		return OSWindows
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to the canonical format.
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "amd64", "x86_64", "x64":
		return ArchX64
	case "386", "i386", "i486", "i586", "i686", "x86":
		return ArchX86
	case "arm64", "aarch64":
		return ArchAarch64
	default:
		return arch
	}
}
