package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
)

// shortIDSeparator joins the owner id and the random component of a short id.
// It must never appear in a user id (user creation rejects it).
const shortIDSeparator = "+"

// Short represents a posted short video. The record itself is tiny; the
// media bytes live in the blob store under the same id, and BlobURL is the
// derived location a client uploads to / downloads from.
//
// OWNER-EMBEDDED IDS:
// A short id is "<ownerID>+<random>". Embedding the owner in the identifier
// means ownership checks (and blob-token subject checks) never need an extra
// store lookup: parse the id, you have the owner.
type Short struct {
	ID        string    `json:"shortId"`
	OwnerID   string    `json:"ownerId"`
	BlobURL   string    `json:"blobUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewShortID mints a fresh short id for the given owner.
//
// The random component is an xid: 20 URL-safe chars, sortable by creation
// time, no dashes. Uniqueness of the pair is enforced again by the primary
// key on the shorts table, so a (cosmically unlikely) collision surfaces as
// an insert error rather than silent overwrite.
func NewShortID(ownerID string) string {
	return fmt.Sprintf("%s%s%s", ownerID, shortIDSeparator, xid.New().String())
}

// OwnerOfShort extracts the owner id embedded in a short id.
// The second return is false if the id does not have the expected shape.
func OwnerOfShort(shortID string) (string, bool) {
	owner, _, found := strings.Cut(shortID, shortIDSeparator)
	if !found || owner == "" {
		return "", false
	}
	return owner, true
}

// ValidUserID reports whether an id is usable as a user id. The separator is
// reserved so that OwnerOfShort parses unambiguously.
func ValidUserID(id string) bool {
	return id != "" && !strings.Contains(id, shortIDSeparator)
}
