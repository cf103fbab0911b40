package domain

import (
	"errors"
	"strings"
)

// UserID is the opaque handle for the owning user. The collaborator boundary
// (auth) resolves whatever identity string it uses — email or mobile — into
// this type exactly once; ledger and analytics code never sees the raw string.
type UserID string

var ErrEmptyUserID = errors.New("user id is empty")

func ParseUserID(raw string) (UserID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyUserID
	}
	return UserID(raw), nil
}

func (u UserID) String() string {
	return string(u)
}
