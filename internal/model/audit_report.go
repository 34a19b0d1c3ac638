package model

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/sha3"
)

// AuditReport is one automated audit of a website page.
// The engine reads it but never modifies it.
type AuditReport struct {
	// ID identifies the report. Reports loaded from the archive carry the
	// archive's identifier.
	ID int64 `json:"id,omitempty"`

	// WebsiteID is the website that owns the audited page.
	WebsiteID int64 `json:"website_id"`

	// URL is the audited page.
	URL string `json:"url,omitempty"`

	// AuditedAt is when the auditing tool produced the results.
	AuditedAt time.Time `json:"audited_at,omitzero"`

	// RawResults is the auditing tool's nested result document.
	// It is kept raw so that detection can reject a document that is not
	// a JSON object instead of failing at load time.
	RawResults json.RawMessage `json:"raw_results"`
}

// Digest returns the hex SHA3-256 digest of the compacted raw results.
// Two reports with the same results for the same website share a digest,
// which lets the archive skip re-importing a file.
func (r *AuditReport) Digest() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, r.RawResults); err != nil {
		buf.Reset()
		buf.Write(r.RawResults)
	}
	sum := sha3.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
