package version

// Version information, overridden at build time with -ldflags "-X ..."
var (
	// Version is the current version of fanlog
	Version = "1.0.0-dev"
	// BuildDate is the date when the binary was built
	BuildDate = "undefined"
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "undefined"
)

// VersionInfo returns formatted version information
func VersionInfo() string {
	return "fanlog version " + Version + " (build: " + BuildDate + ", commit: " + CommitHash + ")"
}
