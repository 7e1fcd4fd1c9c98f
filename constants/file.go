package constants

import "strings"

// Format is the closed set of document kinds the loader understands.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
)

// PDFMagic is the signature at the start of every PDF file.
const PDFMagic = "%PDF"

// ImageExtensions holds the image extensions we recognise without sniffing.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"webp": {},
	"heic": {},
	"heif": {},
	"pbm":  {},
	"pgm":  {},
	"ppm":  {},
	"pnm":  {},
	"pam":  {},
	"jp2":  {},
	"j2k":  {},
	"jpx":  {},
}

// EngineNativeExtensions are image formats the OCR engine reads itself but
// that have no Go decoder, so they skip the decode check.
var EngineNativeExtensions = map[string]struct{}{
	"jp2": {},
	"j2k": {},
	"jpx": {},
}

// IsEngineNative reports whether ext is in EngineNativeExtensions.
func IsEngineNative(ext string) bool {
	_, ok := EngineNativeExtensions[NormalizeExt(ext)]
	return ok
}

// IsHEIC reports whether ext names a HEIC/HEIF image, which needs converting
// before it can be decoded.
func IsHEIC(ext string) bool {
	ext = NormalizeExt(ext)
	return ext == "heic" || ext == "heif"
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a Format, or "" when unknown.
func MapExtToFormat(ext string) Format {
	ext = NormalizeExt(ext)
	if ext == "pdf" {
		return PDF
	}
	if _, ok := ImageExtensions[ext]; ok {
		return IMAGE
	}
	return ""
}
