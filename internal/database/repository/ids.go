package repository

import (
	"strings"

	"github.com/google/uuid"
)

// Deterministic ids for natural-keyed rows make creation idempotent: two
// concurrent resolves of the same account or category produce the same row.

// AccountID derives the id for a (user, name) account. Name matching is
// case-sensitive, so the name is hashed as-is.
func AccountID(userID, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("acct:"+userID+":"+name)).String()
}

// CategoryID derives the id for a category path. parent is empty for
// top-level categories.
func CategoryID(parent, name string) string {
	key := "cat:" + strings.TrimSpace(parent) + ">" + strings.TrimSpace(name)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
