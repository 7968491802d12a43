// Package device derives a coarse device fingerprint from the User-Agent so
// the fraud scorer can notice a user switching to an unfamiliar device.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// Profile is the parsed, version-coarsened view of a User-Agent.
type Profile struct {
	Browser      string
	BrowserMajor string
	OS           string
	Platform     string
	Mobile       bool
	Bot          bool
}

// Parse extracts a Profile. Browser versions are cut to the major component
// so routine browser updates do not look like a new device.
func Parse(userAgent string) Profile {
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	return Profile{
		Browser:      name,
		BrowserMajor: major,
		OS:           ua.OS(),
		Platform:     ua.Platform(),
		Mobile:       ua.Mobile(),
		Bot:          ua.Bot(),
	}
}

// Fingerprint returns a short stable hash of the profile, or "" for an empty
// User-Agent.
func Fingerprint(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	p := Parse(userAgent)
	mobile := "desktop"
	if p.Mobile {
		mobile = "mobile"
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{p.Browser, p.BrowserMajor, p.OS, p.Platform, mobile}, "|")))
	return hex.EncodeToString(sum[:8])
}
