package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestLogger(format Format, buf *bytes.Buffer) *Logger {
	cfg := DefaultConfig()
	cfg.Format = format
	cfg.EnableColors = false
	cfg.EnableTimestamp = false
	cfg.Output = buf
	return NewLogger(cfg)
}

func TestJSONFormatter_IncludesFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(FormatJSON, &buf)

	l.WithFields(Fields{"email": "a***@b.com"}).WithError(errors.New("smtp down")).Error("send failed")

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if got["level"] != "ERROR" || got["message"] != "send failed" {
		t.Errorf("unexpected level/message: %v", got)
	}
	if got["email"] != "a***@b.com" || got["error"] != "smtp down" {
		t.Errorf("missing fields: %v", got)
	}
}

func TestCloudWatchFormatter_UsesShortKeys(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(FormatCloudWatch, &buf)
	l.WithField("k", 1).Info("hello")

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["msg"] != "hello" {
		t.Errorf("msg = %v", got["msg"])
	}
}

func TestConsoleFormatter_SortsFields(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(FormatConsole, &buf)
	l.WithFields(Fields{"b": 2, "a": 1}).Info("ready")

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO ] ready a=1 b=2") {
		t.Fatalf("line = %q", line)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(FormatConsole, &buf)
	l.SetLevel(LevelWarn)

	l.WithField("x", 1).Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.WithField("x", 1).Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("warn should be written")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "WARNING": LevelWarn, "bogus": LevelInfo, " error ": LevelError}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "a***@example.com",
		"x@y.io":            "x***@y.io",
		"not-an-email":      "***",
		"@nolocal.com":      "***",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
