package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogrus_SkipDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogrus(&buf, false)

	sink.Skip("/opt/python3.9", "probe_failed", errors.New("boom"))
	if buf.Len() != 0 {
		t.Errorf("expected Skip to be silent without debug, got %q", buf.String())
	}
}

func TestLogrus_SkipWithDebug(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogrus(&buf, true)

	sink.Skip("/opt/python3.9", "probe_failed", errors.New("boom"))
	out := buf.String()
	if !strings.Contains(out, "/opt/python3.9") || !strings.Contains(out, "probe_failed") {
		t.Errorf("expected skip fields in output, got %q", out)
	}
}

func TestLogrus_ProviderError(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogrus(&buf, false)

	sink.ProviderError("path", errors.New("permission denied"))
	out := buf.String()
	if !strings.Contains(out, "path") || !strings.Contains(out, "permission denied") {
		t.Errorf("expected provider error fields in output, got %q", out)
	}
}

func TestNoOp(t *testing.T) {
	var sink Sink = NoOp{}
	sink.Skip("candidate", "reason", nil)
	sink.ProviderError("provider", nil)
}
