package ocr

import (
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/bloodwork/constants"
)

// Detect decides whether path is a PDF or an image. The checks run in order:
// extension, MIME type guessed from the extension, then the first four bytes.
// Anything that is not positively a PDF is treated as an image; whether the
// bytes really decode as one is checked later by the image path.
func Detect(path string) constants.Format {
	ext := filepath.Ext(path)
	if constants.MapExtToFormat(ext) == constants.PDF {
		return constants.PDF
	}
	if mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil && mt == "application/pdf" {
		return constants.PDF
	}
	if hasPDFMagic(path) {
		return constants.PDF
	}
	return constants.IMAGE
}

func hasPDFMagic(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, len(constants.PDFMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return string(header) == constants.PDFMagic
}
