package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.4.2"
	AppName   = "TrustFrame"
	BuildDate = "unknown"
)

// Info contains versioning information
type Info struct {
	AppName        string `json:"app_name"`
	Version        string `json:"version"`
	BuildDate      string `json:"build_date"`
	GoVersion      string `json:"go_version"`
	Platform       string `json:"platform"`
	PatternVersion string `json:"pattern_version,omitempty"`
}

// GetInfo returns version information
func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
