// Package domain defines typed identifiers shared across services and stores.
// Wrapping uuid.UUID in distinct types prevents accidental cross-assignment
// between identifier kinds.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

// UserID identifies a registered user. It is resolved by the external
// authentication layer and treated as opaque by the progress core.
type UserID uuid.UUID

func (id UserID) String() string { return uuid.UUID(id).String() }

// MarshalText serializes the ID in canonical UUID form, keeping JSON stable
// across the wrapping type.
func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts any canonical UUID, including the nil UUID, so
// serialized zero values round-trip.
func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

// IsZero reports whether the ID is the nil UUID.
func (id UserID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses a UserID from its string form. The nil UUID is rejected
// so a zero UserID always means "unset".
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	if u == uuid.Nil {
		return UserID{}, errors.New("nil user id")
	}
	return UserID(u), nil
}
