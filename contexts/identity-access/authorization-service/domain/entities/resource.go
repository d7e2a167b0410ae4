package entities

import "github.com/google/uuid"

// AccessType is the enumerated action kind evaluated by the policy engine.
// Unknown values always deny.
type AccessType string

const (
	AccessRead  AccessType = "read"
	AccessWrite AccessType = "write"
)

// Resource is the closed set of protectable entity variants. Keeping the set
// sealed lets the engine match exhaustively in one place instead of spreading
// policy across entity methods.
type Resource interface {
	ResourceType() string
}

// Organization is the access-control view of an organization.
type Organization struct {
	ID     uuid.UUID `json:"id"`
	Public bool      `json:"public"`
}

func (Organization) ResourceType() string { return "organization" }

// Account is the access-control view of a billing account. Ownership is
// carried on the resource itself so decisions follow the stored owner
// reference, never an id supplied by the caller.
type Account struct {
	ID                  uuid.UUID  `json:"id"`
	OwnerUserID         *uuid.UUID `json:"owner_user_id,omitempty"`
	OwnerOrganizationID *uuid.UUID `json:"owner_organization_id,omitempty"`
}

func (Account) ResourceType() string { return "account" }

// Customer is the access-control view of a billing customer.
type Customer struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
}

func (Customer) ResourceType() string { return "customer" }

// MemberList is the membership roster of one organization. Listing reveals
// other subjects' identities, so it is a distinct variant with a narrower
// rule than organization read.
type MemberList struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

func (MemberList) ResourceType() string { return "member_list" }
