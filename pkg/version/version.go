package version

// Version is overridden at build time with
// -ldflags "-X github.com/projectdiscovery/pingsweep/pkg/version.Version=..."
var Version = "v0.1.0"

// GetVersion returns the version string
func GetVersion() string {
	return Version
}
