package entities

import "github.com/google/uuid"

// SubjectKind distinguishes how the caller was authenticated.
type SubjectKind string

const (
	SubjectKindUser              SubjectKind = "user"
	SubjectKindOrganizationToken SubjectKind = "organization_token"
	SubjectKindAnonymous         SubjectKind = "anonymous"
)

// Membership links a user subject to one organization.
// Any membership grants baseline read; Admin additionally grants write.
type Membership struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Admin          bool      `json:"admin"`
}

// Subject is an already-authenticated caller with its memberships preloaded.
// The policy engine never performs I/O, so whoever builds a Subject is
// responsible for attaching the membership set.
type Subject struct {
	ID             uuid.UUID    `json:"id"`
	Kind           SubjectKind  `json:"kind"`
	OrganizationID *uuid.UUID   `json:"organization_id,omitempty"`
	Memberships    []Membership `json:"memberships,omitempty"`
}

// Anonymous is the subject used for unauthenticated requests.
func Anonymous() Subject {
	return Subject{Kind: SubjectKindAnonymous}
}

// MembershipIn returns the subject's membership in the given organization.
func (s Subject) MembershipIn(organizationID uuid.UUID) (Membership, bool) {
	for _, membership := range s.Memberships {
		if membership.OrganizationID == organizationID {
			return membership, true
		}
	}
	return Membership{}, false
}
