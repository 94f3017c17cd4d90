package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	origVersion := BuildVersion
	origBuildTime := BuildTime
	origCommit := Commit
	defer func() {
		BuildVersion = origVersion
		BuildTime = origBuildTime
		Commit = origCommit
	}()

	BuildVersion = "1.2.3"
	BuildTime = "2026-01-01"
	Commit = "abcdef0123456789"

	info := BuildInfo()

	if !strings.Contains(info, "1.2.3") {
		t.Errorf("expected version in info, got: %s", info)
	}
	if !strings.Contains(info, "abcdef01") {
		t.Errorf("expected short commit in info, got: %s", info)
	}
	if strings.Contains(info, "abcdef0123456789") {
		t.Errorf("expected commit to be truncated, got: %s", info)
	}
	if !strings.Contains(info, runtime.GOOS) || !strings.Contains(info, runtime.GOARCH) {
		t.Errorf("expected platform in info, got: %s", info)
	}

	// Short commits pass through unchanged.
	Commit = "abc123"
	if !strings.Contains(BuildInfo(), "abc123") {
		t.Errorf("expected short commit as is, got: %s", BuildInfo())
	}
}
