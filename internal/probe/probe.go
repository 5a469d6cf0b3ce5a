// Package probe produces point-in-time snapshots of the hosting environment:
// browser identity, operating system, window focus and fullscreen state.
// It is pure introspection; it holds no state and has no side effects.
package probe

import (
	"regexp"
	"strings"

	"github.com/groblegark/proctor/internal/audit"
)

var (
	edgeRe    = regexp.MustCompile(`Edg/(\d+)`)
	chromeRe  = regexp.MustCompile(`Chrome/(\d+)`)
	firefoxRe = regexp.MustCompile(`Firefox/(\d+)`)
	safariRe  = regexp.MustCompile(`Version/(\d+)`)
)

// DetectBrowser identifies the browser family and major version from a
// user-agent string. Order matters: Edge ships a Chrome token and Chrome
// ships a Safari token.
func DetectBrowser(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Edg/"):
		return "Edge " + majorVersion(edgeRe, userAgent)
	case strings.Contains(userAgent, "Chrome/"):
		return "Chrome " + majorVersion(chromeRe, userAgent)
	case strings.Contains(userAgent, "Firefox/"):
		return "Firefox " + majorVersion(firefoxRe, userAgent)
	case strings.Contains(userAgent, "Safari/"):
		return "Safari " + majorVersion(safariRe, userAgent)
	}
	return "Unknown Browser"
}

func majorVersion(re *regexp.Regexp, ua string) string {
	if m := re.FindStringSubmatch(ua); m != nil {
		return m[1]
	}
	return "Unknown"
}

// DetectOS identifies the operating system from a user-agent string.
func DetectOS(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return "Windows"
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"), strings.Contains(userAgent, "iOS"):
		return "iOS"
	case strings.Contains(userAgent, "Mac OS X"):
		return "macOS"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	}
	return "Unknown OS"
}

// Probe captures environment snapshots for event metadata. The focus and
// fullscreen readers are supplied by the embedding session so the probe
// reflects live state at capture time.
type Probe struct {
	browser    string
	os         string
	hasFocus   func() bool
	fullscreen func() bool
}

// New builds a probe for the given user-agent string. Either state reader
// may be nil; focus then defaults to true and fullscreen to false.
func New(userAgent string, hasFocus, fullscreen func() bool) *Probe {
	return &Probe{
		browser:    DetectBrowser(userAgent),
		os:         DetectOS(userAgent),
		hasFocus:   hasFocus,
		fullscreen: fullscreen,
	}
}

// Snapshot returns the current metadata, attaching extra context when given.
func (p *Probe) Snapshot(extra map[string]any) audit.Metadata {
	md := audit.Metadata{
		Browser:    p.browser,
		OS:         p.os,
		FocusState: true,
	}
	if p.hasFocus != nil {
		md.FocusState = p.hasFocus()
	}
	if p.fullscreen != nil {
		md.Fullscreen = p.fullscreen()
	}
	if len(extra) > 0 {
		md.Extra = extra
	}
	return md
}
