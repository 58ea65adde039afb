package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidVideoID(t *testing.T) {
	tt := []struct {
		name string
		id   string
		want bool
	}{
		{"standard id", "dQw4w9WgXcQ", true},
		{"id with underscore and dash", "a_b-c_d-e_f", true},
		{"too short", "dQw4w9WgXc", false},
		{"too long", "dQw4w9WgXcQQ", false},
		{"invalid character", "dQw4w9WgXc!", false},
		{"empty", "", false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidVideoID(tc.id); got != tc.want {
				t.Errorf("ValidVideoID(%q) = %v, want %v", tc.id, got, tc.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tt := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{355, "5:55"},
		{3725, "62:05"},
	}

	for _, tc := range tt {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"count": 3}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(compact) != `{"count":3}` {
		t.Errorf("compact output = %s", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Errorf("pretty output not indented: %s", pretty)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("GenerateID() returned duplicate ids")
	}
	if len(a) != 36 {
		t.Errorf("GenerateID() length = %d, want 36", len(a))
	}
}

func TestNewFileLogger(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "logs", "app.log")

	logger, err := NewFileLogger(logPath)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewFileLogger() returned nil logger")
	}

	logger.Info("hello")

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
