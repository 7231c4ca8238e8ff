package medglot

// Version information for medglot.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/dawalabs/medglot.Version=1.0.0"
const (
	// Name is the application name.
	Name = "medglot"

	// Description is a short description of the application.
	Description = "AI-assisted medicine-content translation pipeline"

	// Version is the semantic version of the application.
	Version = "0.1.0"
)

// BuildInfo contains build-time information, typically set via ldflags.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}
