package buildinfo

import (
	"strings"
	"testing"
)

func TestStrings(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })
	Version, Commit, Date = "v0.3.0", "abc123", "2026-01-02T03:04:05Z"

	if got := String(); got != "version: v0.3.0\ncommit: abc123\nbuilt: 2026-01-02T03:04:05Z" {
		t.Errorf("String() = %q", got)
	}
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} version v0.3.0\n") {
		t.Errorf("Template() = %q", got)
	}
	if got := UserAgent(); !strings.HasPrefix(got, "stackrules/v0.3.0 ") {
		t.Errorf("UserAgent() = %q", got)
	}
}
