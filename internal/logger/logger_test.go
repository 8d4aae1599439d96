package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")

			opts := DefaultOptions()
			opts.Level = tt.level
			opts.File = logFile
			opts.Console = false
			opts.Compress = false

			if err := Init(opts); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			logContent := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(logContent, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestUninitializedLoggerIsSafe(t *testing.T) {
	// The package-level logger is a nop before Init; logging must not
	// panic.
	Log = Log.WithOptions()
	Info("no-op message")
	Sugar.Infof("no-op %s", "message")
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Level != "info" {
		t.Errorf("expected level info, got %s", opts.Level)
	}
	if !opts.Console {
		t.Error("expected console output by default")
	}
	if opts.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", opts.MaxSizeMB)
	}
	if opts.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", opts.MaxBackups)
	}
	if opts.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", opts.MaxAgeDays)
	}
	if !opts.Compress {
		t.Error("expected Compress true")
	}
}
