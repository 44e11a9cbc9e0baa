package ws

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// describePlatform renders a short "Browser on OS" label for a host.
func describePlatform(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if platform := ua.Platform(); ua.Mobile() && platform != "" && !strings.Contains(os, platform) {
		os = platform
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return fmt.Sprintf("%s on %s", browser, os)
}
