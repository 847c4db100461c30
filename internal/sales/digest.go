package sales

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainView prefixes every view digest.
// The version suffix leaves room for a future encoding change.
const DomainView = "salesmetrics/view/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ViewDigest computes the content digest of a view's canonical encoding.
// The view name is part of the hashed input, so two views with equal rows
// still have different digests.
func ViewDigest(view string, value any) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"view": view,
		"rows": value,
	})
	if err != nil {
		return "", fmt.Errorf("ViewDigest(%s): %w", view, err)
	}
	return hashWithDomain(DomainView, canonical), nil
}
