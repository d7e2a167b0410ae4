// Package httptransport defines the wire DTOs of the billing API.
package httptransport

import "time"

// IngestEventRequest submits one usage event for a customer.
type IngestEventRequest struct {
	CustomerID string  `json:"customer_id"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	MeterID    *string `json:"meter_id,omitempty"`
}

// UsageEventDTO echoes the stored event back to the caller.
type UsageEventDTO struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	CustomerID     string    `json:"customer_id"`
	Name           string    `json:"name"`
	Value          float64   `json:"value"`
	MeterID        *string   `json:"meter_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// CustomerMeterDTO is one derived balance row.
type CustomerMeterDTO struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	MeterID       string    `json:"meter_id"`
	ConsumedUnits float64   `json:"consumed_units"`
	CreditedUnits float64   `json:"credited_units"`
	Balance       float64   `json:"balance"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListCustomerMetersResponse is the balance listing payload.
type ListCustomerMetersResponse struct {
	Items      []CustomerMeterDTO `json:"items"`
	TotalCount int                `json:"total_count"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
