package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

// ContentHash is the hex SHA-256 of the raw document bytes.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CacheKey namespaces a content hash by proof type, so identical bytes
// submitted as different proof types never share an entry.
func CacheKey(contentHash string, pt constants.ProofType) string {
	return contentHash + ":" + string(pt)
}

// ValidationHash fingerprints the field record of an accepted result. It is
// nil for results under review. Only field values take part: the record is
// serialized as RFC 8785 canonical JSON (sorted keys) before hashing.
func ValidationHash(r entity.ExtractionResult) (*string, error) {
	if r.NeedsReview {
		return nil, nil
	}
	raw, err := json.Marshal(r.Fields.AsMap())
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize fields: %w", err)
	}
	sum := sha256.Sum256(canon)
	h := hex.EncodeToString(sum[:])
	return &h, nil
}
