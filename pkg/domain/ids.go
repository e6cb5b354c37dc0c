package domain

import (
	"github.com/google/uuid"

	dErrors "rtidesk/pkg/domain-errors"
)

// Typed identifiers keep owners and applications from being mixed up at
// compile time. Construct them from external input with the Parse functions.
type (
	UserID        uuid.UUID
	ApplicationID uuid.UUID
)

// NewApplicationID returns a fresh random application id.
func NewApplicationID() ApplicationID {
	return ApplicationID(uuid.New())
}

// ParseUserID validates a user id taken from a token or request.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseApplicationID validates an application id taken from a path.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application id")
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(u), nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label)
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id ApplicationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ApplicationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
