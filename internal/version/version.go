package version

import "fmt"

// Set at build time via -ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// UserAgent returns the User-Agent header sent with every download
func UserAgent() string {
	return fmt.Sprintf("mpb/%s", Version)
}
