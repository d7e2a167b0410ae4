package entities

import "time"

// Decision is returned by access checks. It is a plain value with no side
// effects, so checks are safe to repeat or to run as dry-run audits.
type Decision struct {
	SubjectID    string     `json:"subject_id"`
	SubjectKind  string     `json:"subject_kind"`
	Access       AccessType `json:"access"`
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id"`
	Allowed      bool       `json:"allowed"`
	Reason       string     `json:"reason"`
	CheckedAt    time.Time  `json:"checked_at"`
}
