package middleware

import (
	"bytes"
	"testing"
)

func TestFilteredWriter(t *testing.T) {
	tests := []struct {
		name string
		line string
		kept bool
	}{
		{"fast success discarded", "12:00:00 | 200 | 1.2ms | GET /health\n", false},
		{"error kept", "12:00:00 | 500 | 1.2ms | GET /messages\n", true},
		{"client error kept", "12:00:00 | 404 | 0.8ms | GET /nope\n", true},
		{"slow success kept", "12:00:00 | 200 | 750ms | GET /messages\n", true},
		{"unparseable kept", "something unexpected\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := &filteredWriter{dest: &buf, slowThresholdMs: 500, errorStatusFloor: 400}

			n, err := w.Write([]byte(tt.line))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != len(tt.line) {
				t.Errorf("n: got %d, want %d", n, len(tt.line))
			}
			if kept := buf.Len() > 0; kept != tt.kept {
				t.Errorf("kept: got %v, want %v", kept, tt.kept)
			}
		})
	}
}
