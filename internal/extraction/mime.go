package extraction

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

// ResolveMimeType returns the declared type when the service accepts it,
// otherwise infers one from the filename extension, otherwise falls back to
// JPEG.
func ResolveMimeType(declared, filename string) string {
	mt, _, _ := strings.Cut(declared, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	if constants.IsAcceptedMime(mt) {
		return mt
	}
	if byExt, ok := constants.MimeForExt(filepath.Ext(filename)); ok {
		return byExt
	}
	return constants.DefaultMimeType
}
