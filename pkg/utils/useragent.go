package utils

import (
	"fmt"
	"strings"

	"github.com/avct/uasurfer"
)

type UserAgentInfo struct {
	Device  string
	OS      string
	Browser string
	Desktop bool
}

func ParseUserAgent(uaString string) *UserAgentInfo {
	ua := uasurfer.Parse(uaString)

	device := "Unknown"
	switch ua.DeviceType {
	case uasurfer.DeviceComputer:
		device = "Computer"
	case uasurfer.DeviceTablet:
		device = "Tablet"
	case uasurfer.DevicePhone:
		device = "Phone"
	case uasurfer.DeviceConsole:
		device = "Console"
	case uasurfer.DeviceWearable:
		device = "Wearable"
	case uasurfer.DeviceTV:
		device = "TV"
	default:
		return nil
	}

	return &UserAgentInfo{
		Device:  device,
		OS:      fmt.Sprintf("%s %d.%d", ua.OS.Name.String(), ua.OS.Version.Major, ua.OS.Version.Minor),
		Browser: fmt.Sprintf("%s %d.%d", ua.Browser.Name.String(), ua.Browser.Version.Major, ua.Browser.Version.Minor),
		Desktop: ua.DeviceType == uasurfer.DeviceComputer && ua.Browser.Name != uasurfer.BrowserUnknown && !ua.IsBot(),
	}
}

// UpstreamUserAgent picks the User-Agent sent to embed providers. A real
// desktop browser UA from the client is forwarded as is; anything else
// (mobile, bots, empty) is replaced by fallback, since many providers serve
// stripped-down or ad-only pages to those.
func UpstreamUserAgent(clientUA, fallback string) string {
	clientUA = strings.TrimSpace(clientUA)
	if clientUA == "" {
		return fallback
	}
	info := ParseUserAgent(clientUA)
	if info == nil || !info.Desktop {
		return fallback
	}
	return clientUA
}
