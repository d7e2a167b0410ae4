package httptransport

import "time"

// CheckAccessRequest is the request body for a dry-run access decision. The
// resource attributes are declared by the caller; decisions are effect-free
// so the endpoint is safe to call speculatively.
type CheckAccessRequest struct {
	SubjectID      string `json:"subject_id"`
	SubjectKind    string `json:"subject_kind"`
	OrganizationID string `json:"organization_id,omitempty"`

	Access       string `json:"access"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`

	Resource CheckAccessResource `json:"resource,omitempty"`
}

// CheckAccessResource carries the variant-specific resource attributes.
type CheckAccessResource struct {
	Public              bool   `json:"public,omitempty"`
	OwnerUserID         string `json:"owner_user_id,omitempty"`
	OwnerOrganizationID string `json:"owner_organization_id,omitempty"`
	OrganizationID      string `json:"organization_id,omitempty"`
}

// CheckAccessResponse describes one decision.
type CheckAccessResponse struct {
	SubjectID    string    `json:"subject_id"`
	SubjectKind  string    `json:"subject_kind"`
	Access       string    `json:"access"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason"`
	CheckedAt    time.Time `json:"checked_at"`
}

// ErrorResponse is the shared transport error shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
