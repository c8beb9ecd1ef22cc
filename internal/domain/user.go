package domain

import "github.com/google/uuid"

// UserID is the opaque per-user identifier. New identifiers are random
// v4 UUIDs; the textual form round-trips through ParseUserID.
type UserID uuid.UUID

// NewUserID generates a fresh identifier.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// ParseUserID parses the canonical textual form of a user identifier.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(id), nil
}

// String returns the canonical textual form.
func (u UserID) String() string {
	return uuid.UUID(u).String()
}
