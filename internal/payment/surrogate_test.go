package payment

import (
	"strings"
	"testing"
	"time"
)

func TestNewSurrogate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	handle := NewSurrogate(now)

	if !strings.HasPrefix(handle, "mock_1741089600000_") {
		t.Fatalf("unexpected handle prefix: %s", handle)
	}
	if !strings.Contains(handle, "_secret_") {
		t.Fatalf("expected client secret suffix, got %s", handle)
	}
	if !IsSurrogate(handle) {
		t.Fatalf("expected IsSurrogate=true for %s", handle)
	}

	core := CoreHandle(handle)
	if strings.Contains(core, "_secret_") {
		t.Fatalf("core handle still carries secret: %s", core)
	}
	if !strings.HasPrefix(handle, core) {
		t.Fatalf("core %s is not a prefix of %s", core, handle)
	}
}

func TestCoreHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		handle string
		want   string
	}{
		{"strips secret suffix", "mock_172000_abc_secret_xyz", "mock_172000_abc"},
		{"no suffix unchanged", "mock_172000_abc", "mock_172000_abc"},
		{"provider handle unchanged", "5O190127TN364715T", "5O190127TN364715T"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CoreHandle(tt.handle); got != tt.want {
				t.Fatalf("CoreHandle(%q) = %q, want %q", tt.handle, got, tt.want)
			}
		})
	}
}

func TestIsSurrogate(t *testing.T) {
	t.Parallel()

	if IsSurrogate("5O190127TN364715T") {
		t.Fatalf("provider handle misclassified as surrogate")
	}
	if !IsSurrogate("mock_172000_abc") {
		t.Fatalf("surrogate handle not recognized")
	}
}
