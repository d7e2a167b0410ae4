package entities

import (
	"time"

	"github.com/google/uuid"
)

// CreditEventName marks an event as a credit grant rather than consumption.
// Credit events carry an explicit MeterID and add to the credited balance.
const CreditEventName = "meter.credited"

// UsageEvent is a single immutable ingested event. Consumption events are
// matched to meters by Name; credit events reference a meter directly.
type UsageEvent struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	CustomerID     uuid.UUID  `json:"customer_id"`
	Name           string     `json:"name"`
	Value          float64    `json:"value"`
	MeterID        *uuid.UUID `json:"meter_id,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// IsCredit reports whether the event grants credit instead of recording usage.
func (e UsageEvent) IsCredit() bool {
	return e.Name == CreditEventName && e.MeterID != nil
}
