package probe

import "testing"

const (
	uaChromeLinux = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaEdgeWin     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91"
	uaFirefoxMac  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaSafariMac   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
	uaChromeDroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaSafariIOS   = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
)

func TestDetectBrowser(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{uaChromeLinux, "Chrome 120"},
		{uaEdgeWin, "Edge 120"},
		{uaFirefoxMac, "Firefox 121"},
		{uaSafariMac, "Safari 17"},
		{"curl/8.0", "Unknown Browser"},
	}
	for _, tt := range tests {
		if got := DetectBrowser(tt.ua); got != tt.want {
			t.Errorf("DetectBrowser(%.30q...) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestDetectOS(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{uaChromeLinux, "Linux"},
		{uaEdgeWin, "Windows"},
		{uaFirefoxMac, "macOS"},
		{uaChromeDroid, "Android"},
		{uaSafariIOS, "iOS"},
		{"curl/8.0", "Unknown OS"},
	}
	for _, tt := range tests {
		if got := DetectOS(tt.ua); got != tt.want {
			t.Errorf("DetectOS(%.30q...) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	focus := false
	full := true
	p := New(uaChromeLinux, func() bool { return focus }, func() bool { return full })

	md := p.Snapshot(map[string]any{"key": "c"})
	if md.Browser != "Chrome 120" || md.OS != "Linux" {
		t.Errorf("identity = %q/%q", md.Browser, md.OS)
	}
	if md.FocusState || !md.Fullscreen {
		t.Errorf("state = focus %v fullscreen %v, want false/true", md.FocusState, md.Fullscreen)
	}
	if md.Extra["key"] != "c" {
		t.Errorf("extra not attached: %v", md.Extra)
	}

	// Snapshot reflects live state on each call.
	focus = true
	if md2 := p.Snapshot(nil); !md2.FocusState {
		t.Error("second snapshot did not observe focus change")
	}
	if md2 := p.Snapshot(nil); md2.Extra != nil {
		t.Error("nil extra should stay nil")
	}
}

func TestSnapshotDefaults(t *testing.T) {
	p := New(uaChromeLinux, nil, nil)
	md := p.Snapshot(nil)
	if !md.FocusState {
		t.Error("focus should default to true")
	}
	if md.Fullscreen {
		t.Error("fullscreen should default to false")
	}
}
