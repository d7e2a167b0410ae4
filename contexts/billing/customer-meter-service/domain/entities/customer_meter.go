package entities

import (
	"time"

	"github.com/google/uuid"
)

// CustomerMeter is the derived balance of one customer against one meter.
// It is recomputed in full from the event history, never mutated in place.
type CustomerMeter struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	MeterID       uuid.UUID `json:"meter_id"`
	ConsumedUnits float64   `json:"consumed_units"`
	CreditedUnits float64   `json:"credited_units"`
	Balance       float64   `json:"balance"`
	UpdatedAt     time.Time `json:"updated_at"`
}
