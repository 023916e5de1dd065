package utils

import (
	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string, recorded on
// login for audit logging.
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile or desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browser_ver"`
	IsBot      bool   `json:"is_bot"`
	Raw        string `json:"raw"`
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Raw:        userAgent,
		}
	}

	parser := ua.New(userAgent)
	browser, version := parser.Browser()

	deviceType := "desktop"
	if parser.Mobile() {
		deviceType = "mobile"
	}

	osInfo := parser.OS()
	if osInfo == "" {
		osInfo = "Unknown"
	}
	if browser == "" {
		browser = "Unknown"
	}

	return DeviceInfo{
		DeviceType: deviceType,
		OS:         osInfo,
		Browser:    browser,
		BrowserVer: version,
		IsBot:      parser.Bot(),
		Raw:        userAgent,
	}
}
