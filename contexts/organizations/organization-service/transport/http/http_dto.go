package httptransport

import "time"

// OrganizationDTO is the wire shape of one organization.
type OrganizationDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Public     bool      `json:"public"`
	AccountID  *string   `json:"account_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListOrganizationsResponse is one page of organizations.
type ListOrganizationsResponse struct {
	Items      []OrganizationDTO `json:"items"`
	TotalCount int               `json:"total_count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// CreateOrganizationRequest is the creation body.
type CreateOrganizationRequest struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Public bool   `json:"public"`
}

// UpdateOrganizationRequest carries optional field updates.
type UpdateOrganizationRequest struct {
	Name   *string `json:"name,omitempty"`
	Public *bool   `json:"public,omitempty"`
}

// SetAccountRequest links an account to the organization.
type SetAccountRequest struct {
	AccountID string `json:"account_id"`
}

// AccountDTO is the wire shape of a billing account.
type AccountDTO struct {
	ID                  string    `json:"id"`
	OwnerUserID         *string   `json:"owner_user_id,omitempty"`
	OwnerOrganizationID *string   `json:"owner_organization_id,omitempty"`
	Country             string    `json:"country"`
	CreatedAt           time.Time `json:"created_at"`
}

// MemberDTO is one roster entry.
type MemberDTO struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Admin          bool      `json:"admin"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListMembersResponse is the full roster (rosters are small, no paging).
type ListMembersResponse struct {
	Items      []MemberDTO `json:"items"`
	TotalCount int         `json:"total_count"`
}

// ErrorResponse is the shared transport error shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
