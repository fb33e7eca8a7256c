package internal

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	originalLevel := logLevel
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		SetLogLevel(originalLevel)
	})
	return &buf
}

func TestSetLogLevel(t *testing.T) {
	captureLogs(t)

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	captureLogs(t)

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{in: "debug", want: LogLevelDebug},
		{in: " INFO ", want: LogLevelInfo},
		{in: "", want: LogLevelInfo},
		{in: "warning", want: LogLevelWarn},
		{in: "warn", want: LogLevelWarn},
		{in: "error", want: LogLevelError},
		{in: "loud", want: LogLevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogFiltering(t *testing.T) {
	buf := captureLogs(t)
	SetLogLevel(LogLevelWarn)

	LogError("error %d", 1)
	LogWarn("warn %d", 2)
	LogInfo("info %d", 3)
	LogDebug("debug %d", 4)

	out := buf.String()
	for _, want := range []string{"level=ERROR", `msg="error 1"`, "level=WARN", `msg="warn 2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"info 3", "debug 4"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("log output should not contain %q:\n%s", unwanted, out)
		}
	}
}
