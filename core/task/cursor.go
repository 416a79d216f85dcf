package task

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Cursor identifies the last returned row of a listing page. Listing
// order is (created_at DESC, id DESC); continuation selects rows
// strictly "less" in that composite order.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor encodes (created_at, id) as base64url of
// "{created_at_iso}|{id}".
func EncodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. Malformed
// input yields ErrInvalidCursor.
func DecodeCursor(cursor string) (Cursor, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, errors.Join(ErrInvalidCursor, err)
	}

	s := string(raw)
	i := strings.Index(s, "|")
	if i < 0 {
		return Cursor{}, ErrInvalidCursor
	}

	ts, err := time.Parse(time.RFC3339Nano, s[:i])
	if err != nil {
		return Cursor{}, errors.Join(ErrInvalidCursor, err)
	}

	return Cursor{CreatedAt: ts.UTC(), ID: s[i+1:]}, nil
}
