package platform

import (
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	detectionDone = false
	detectedPlatform = ""

	p := Detect()
	if p == "" {
		t.Error("Detect() returned empty platform")
	}

	if runtime.GOOS == "darwin" {
		if p != PlatformMacOS {
			t.Errorf("Expected PlatformMacOS on darwin, got %s", p)
		}
	}

	p2 := Detect()
	if p != p2 {
		t.Errorf("Detect() not cached: got %s then %s", p, p2)
	}
}

func TestPlatformString(t *testing.T) {
	tests := []struct {
		platform Platform
		expected string
	}{
		{PlatformMacOS, "macOS"},
		{PlatformLinux, "Linux"},
		{PlatformWSL1, "WSL1"},
		{PlatformWSL2, "WSL2"},
		{PlatformWindows, "Windows"},
		{PlatformUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.platform.String(); got != tt.expected {
			t.Errorf("Platform(%s).String() = %s, want %s", tt.platform, got, tt.expected)
		}
	}
}

func TestIsWSL(t *testing.T) {
	tests := []struct {
		platform Platform
		isWSL    bool
	}{
		{PlatformMacOS, false},
		{PlatformLinux, false},
		{PlatformWSL1, true},
		{PlatformWSL2, true},
		{PlatformWindows, false},
	}

	for _, tt := range tests {
		detectedPlatform = tt.platform
		detectionDone = true

		if got := IsWSL(); got != tt.isWSL {
			t.Errorf("IsWSL() for %s = %v, want %v", tt.platform, got, tt.isWSL)
		}
	}

	detectionDone = false
}

func TestDetectOnCurrentPlatform(t *testing.T) {
	detectionDone = false
	detectedPlatform = ""

	p := Detect()

	switch runtime.GOOS {
	case "darwin":
		if p != PlatformMacOS {
			t.Errorf("On darwin, expected macOS, got %s", p)
		}
	case "linux":
		if p != PlatformLinux && p != PlatformWSL1 && p != PlatformWSL2 {
			t.Errorf("On linux, expected Linux/WSL, got %s", p)
		}
	case "windows":
		if p != PlatformWindows {
			t.Errorf("On windows, expected Windows, got %s", p)
		}
	}
}
