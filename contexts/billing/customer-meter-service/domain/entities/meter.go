package entities

import (
	"time"

	"github.com/google/uuid"
)

// Meter describes a unit of usage an organization bills for. Usage events
// whose name matches EventName count against the meter.
type Meter struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	EventName      string    `json:"event_name"`
	CreatedAt      time.Time `json:"created_at"`
}
