package ocr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/bloodwork/constants"
)

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		want constants.Format
	}{
		{"pdf extension", write("a.pdf", "anything"), constants.PDF},
		{"upper-case extension", write("b.PDF", ""), constants.PDF},
		{"magic bytes without extension", write("upload", "%PDF-1.7\n..."), constants.PDF},
		{"magic bytes behind image extension", write("c.jpg", "%PDF-1.3"), constants.PDF},
		{"png", write("d.png", "\x89PNG\r\n"), constants.IMAGE},
		{"short file", write("e", "%P"), constants.IMAGE},
		{"missing file", filepath.Join(dir, "nope"), constants.IMAGE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.path); got != tt.want {
				t.Errorf("Detect(%s) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}
