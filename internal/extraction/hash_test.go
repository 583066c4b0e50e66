package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

func TestValidationHash(t *testing.T) {
	a := entity.NewFields("title", "issuer", "date")
	a.Set("title", "Go")
	a.Set("issuer", "Acme")

	b := entity.Fields{}
	b.Set("issuer", "Acme")
	b["date"] = nil
	b.Set("title", "Go")

	ha, err := ValidationHash(entity.ExtractionResult{Fields: a})
	require.NoError(t, err)
	hb, err := ValidationHash(entity.ExtractionResult{Fields: b, Confidence: entity.Confidence{"title": 0.7}, CacheHit: true})
	require.NoError(t, err)
	require.NotNil(t, ha)
	require.NotNil(t, hb)
	assert.Equal(t, *ha, *hb)

	sum := sha256.Sum256([]byte(`{"date":null,"issuer":"Acme","title":"Go"}`))
	assert.Equal(t, hex.EncodeToString(sum[:]), *ha)

	c := a.Clone()
	c.Set("title", "Rust")
	hc, err := ValidationHash(entity.ExtractionResult{Fields: c})
	require.NoError(t, err)
	assert.NotEqual(t, *ha, *hc)

	none, err := ValidationHash(entity.ExtractionResult{Fields: a, NeedsReview: true, LowConfidenceFields: []string{"date"}})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestContentHashAndCacheKey(t *testing.T) {
	h := ContentHash([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.Equal(t, h+":job", CacheKey(h, constants.ProofJob))
}

func TestResolveMimeType(t *testing.T) {
	tests := []struct {
		declared, filename, want string
	}{
		{"image/png", "x.pdf", constants.MimePNG},
		{"Image/PNG; charset=binary", "", constants.MimePNG},
		{"application/octet-stream", "scan.PDF", constants.MimePDF},
		{"", "photo.webp", constants.MimeWEBP},
		{"", "anim.gif", constants.MimeGIF},
		{"image/heic", "photo.heic", constants.MimeJPEG},
		{"", "", constants.MimeJPEG},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveMimeType(tt.declared, tt.filename), "%q %q", tt.declared, tt.filename)
	}
}

func TestLowConfidenceFields(t *testing.T) {
	declared := []string{"a", "b", "c", "d"}
	conf := entity.Confidence{"a": 0.5, "b": 0.49, "d": 1, "extra": 0}

	assert.Equal(t, []string{"b", "c"}, LowConfidenceFields(declared, conf, 0.5))
	assert.Equal(t, []string{}, LowConfidenceFields(declared, entity.Confidence{"a": 1, "b": 1, "c": 1, "d": 1}, 0.5))
	assert.Equal(t, declared, LowConfidenceFields(declared, nil, 0.5))
}
