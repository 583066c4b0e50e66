package constants

import "strings"

// Media types accepted by the document-understanding service.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeWEBP = "image/webp"
	MimePDF  = "application/pdf"
)

// DefaultMimeType is used when neither the declared type nor the filename resolves.
const DefaultMimeType = MimeJPEG

// MaxUploadMBDefault caps the size of a single uploaded document.
const MaxUploadMBDefault = 10

// AcceptedMimeTypes holds the media types that can be sent inline to the service.
var AcceptedMimeTypes = map[string]struct{}{
	MimeJPEG: {},
	MimePNG:  {},
	MimeGIF:  {},
	MimeWEBP: {},
	MimePDF:  {},
}

var extToMime = map[string]string{
	"jpg":  MimeJPEG,
	"jpeg": MimeJPEG,
	"png":  MimePNG,
	"gif":  MimeGIF,
	"webp": MimeWEBP,
	"pdf":  MimePDF,
}

// AllowedExtensions holds the file extensions accepted for upload and batch ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

// TextExtensions are read directly as UTF-8 by the text route.
var TextExtensions = map[string]struct{}{
	"txt": {},
	"md":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MimeForExt maps a file extension (with or without dot) to an accepted media type.
func MimeForExt(ext string) (string, bool) {
	mt, ok := extToMime[NormalizeExt(ext)]
	return mt, ok
}

// IsAcceptedMime reports whether mt can be sent to the service unchanged.
func IsAcceptedMime(mt string) bool {
	_, ok := AcceptedMimeTypes[mt]
	return ok
}
