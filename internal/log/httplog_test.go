package log

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogHTTPRequest(t *testing.T) {
	tests := []struct {
		name          string
		entry         HTTPLogEntry
		expectedLevel zapcore.Level
	}{
		{
			name:          "success",
			entry:         HTTPLogEntry{RequestID: "abc", Method: "GET", Path: "/module", Status: 200, Duration: 3 * time.Millisecond},
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name:          "client error",
			entry:         HTTPLogEntry{Method: "POST", Path: "/curve", Status: 400},
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name:          "server error",
			entry:         HTTPLogEntry{Method: "GET", Path: "/sizing", Status: 500, Err: errors.New("database gone")},
			expectedLevel: zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			LogHTTPRequest(zap.New(core).Sugar(), tt.entry)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("got %d log entries, expected 1", len(entries))
			}
			e := entries[0]
			if e.Level != tt.expectedLevel {
				t.Errorf("level = %v, expected %v", e.Level, tt.expectedLevel)
			}
			fields := e.ContextMap()
			if fields["path"] != tt.entry.Path {
				t.Errorf("path field = %v, expected %v", fields["path"], tt.entry.Path)
			}
			if fields["status"] != int64(tt.entry.Status) {
				t.Errorf("status field = %v, expected %v", fields["status"], tt.entry.Status)
			}
			if tt.entry.Err != nil && fields["error"] != tt.entry.Err.Error() {
				t.Errorf("error field = %v, expected %v", fields["error"], tt.entry.Err)
			}
		})
	}
}

func TestGetSugaredLoggerFallback(t *testing.T) {
	if GetSugaredLogger() == nil {
		t.Fatal("GetSugaredLogger returned nil")
	}
	if GetZapLogger() == nil {
		t.Fatal("GetZapLogger returned nil")
	}
}
