package domain

import (
	"github.com/google/uuid"

	dErrors "warden/pkg/domain-errors"
)

// Typed identifiers keep users, verification requests and restrictions from
// being passed where another kind of ID is expected.
type (
	UserID         uuid.UUID
	VerificationID uuid.UUID
	RestrictionID  uuid.UUID
	ReportID       uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id RestrictionID) String() string  { return uuid.UUID(id).String() }
func (id ReportID) String() string       { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RestrictionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }
func NewRestrictionID() RestrictionID   { return RestrictionID(uuid.New()) }
func NewReportID() ReportID             { return ReportID(uuid.New()) }

// ParseUserID parses a non-nil UUID user identifier.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseVerificationID parses a non-nil UUID verification identifier.
func ParseVerificationID(s string) (VerificationID, error) {
	u, err := parseUUID(s, "verification_id")
	return VerificationID(u), err
}

// ParseRestrictionID parses a non-nil UUID restriction identifier.
func ParseRestrictionID(s string) (RestrictionID, error) {
	u, err := parseUUID(s, "restriction_id")
	return RestrictionID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}

// Text marshaling keeps IDs readable in JSON payloads (audit events, job
// payloads, Kafka messages).

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id VerificationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *VerificationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id RestrictionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *RestrictionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ReportID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ReportID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
