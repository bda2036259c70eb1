package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { defaultLogger = prev })
	return &buf
}

func TestFromContextAttachesIDs(t *testing.T) {
	tests := []struct {
		name          string
		ctx           context.Context
		wantRequestID string
		wantUserID    string
	}{
		{"empty", context.Background(), "", ""},
		{"request only", ContextWithRequestID(context.Background(), "req-1"), "req-1", ""},
		{"request and user", ContextWithUserID(ContextWithRequestID(context.Background(), "req-2"), "user-9"), "req-2", "user-9"},
		{"blank request id", ContextWithRequestID(context.Background(), ""), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			FromContext(tt.ctx).Info("hello")

			var line map[string]any
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("decode log line: %v", err)
			}
			got, _ := line["request_id"].(string)
			if got != tt.wantRequestID {
				t.Errorf("request_id = %q, want %q", got, tt.wantRequestID)
			}
			gotUser, _ := line["user_id"].(string)
			if gotUser != tt.wantUserID {
				t.Errorf("user_id = %q, want %q", gotUser, tt.wantUserID)
			}
			if GetRequestID(tt.ctx) != tt.wantRequestID {
				t.Errorf("GetRequestID = %q, want %q", GetRequestID(tt.ctx), tt.wantRequestID)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
