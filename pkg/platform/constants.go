package platform

// Canonical operating system and architecture names. These follow the
// vocabulary of the vendor metadata APIs rather than Go's GOOS/GOARCH.
const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSMacOS represents macOS.
	OSMacOS = "macos"

	// ArchX64 represents the 64-bit x86 architecture.
	ArchX64 = "x64"
	// ArchX86 represents the 32-bit x86 architecture.
	ArchX86 = "x86"
	// ArchAarch64 represents the 64-bit ARM architecture.
	ArchAarch64 = "aarch64"
	// ArchARM represents the 32-bit ARM architecture.
	ArchARM = "arm"

	// FamilyWindows is the platform family for Windows systems.
	FamilyWindows = "windows"
	// FamilyUnix is the platform family for everything else.
	FamilyUnix = "unix"
)

// ValidOS returns the list of valid OS values.
func ValidOS() []string {
	return []string{OSWindows, OSLinux, OSMacOS}
}

// ValidArch returns the list of valid architecture values.
func ValidArch() []string {
	return []string{ArchX64, ArchX86, ArchAarch64, ArchARM}
}
