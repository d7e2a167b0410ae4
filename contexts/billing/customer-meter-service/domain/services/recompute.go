// Package services holds the pure balance derivation for customer meters.
package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/domain/entities"
)

// customerMeterNamespace seeds the deterministic row identifier so that
// recomputing the same customer/meter pair always yields the same ID.
var customerMeterNamespace = uuid.MustParse("6f1c24b8-40d1-4c0f-9a6e-2b8f0c3d51aa")

// CustomerMeterID derives a stable identifier for a customer/meter pair.
func CustomerMeterID(customerID, meterID uuid.UUID) uuid.UUID {
	data := make([]byte, 0, 32)
	data = append(data, customerID[:]...)
	data = append(data, meterID[:]...)
	return uuid.NewSHA1(customerMeterNamespace, data)
}

// RecomputeCustomerMeters derives the complete meter state of one customer
// from scratch. Consumption events match meters by event name within the
// customer's organization; credit events target a meter explicitly. Meters
// with no matching events produce no row. The result is sorted by meter ID
// so repeated runs over the same inputs are identical.
func RecomputeCustomerMeters(customer entities.Customer, meters []entities.Meter, events []entities.UsageEvent, now time.Time) []entities.CustomerMeter {
	// Several meters may listen for the same event name; the event counts
	// toward each of them.
	byEventName := make(map[string][]entities.Meter, len(meters))
	byID := make(map[uuid.UUID]entities.Meter, len(meters))
	for _, m := range meters {
		byEventName[m.EventName] = append(byEventName[m.EventName], m)
		byID[m.ID] = m
	}

	consumed := make(map[uuid.UUID]float64)
	credited := make(map[uuid.UUID]float64)
	for _, ev := range events {
		if ev.CustomerID != customer.ID {
			continue
		}
		if ev.IsCredit() {
			if _, ok := byID[*ev.MeterID]; ok {
				credited[*ev.MeterID] += ev.Value
			}
			continue
		}
		for _, m := range byEventName[ev.Name] {
			consumed[m.ID] += ev.Value
		}
	}

	touched := make(map[uuid.UUID]struct{}, len(consumed)+len(credited))
	for id := range consumed {
		touched[id] = struct{}{}
	}
	for id := range credited {
		touched[id] = struct{}{}
	}

	result := make([]entities.CustomerMeter, 0, len(touched))
	for meterID := range touched {
		result = append(result, entities.CustomerMeter{
			ID:            CustomerMeterID(customer.ID, meterID),
			CustomerID:    customer.ID,
			MeterID:       meterID,
			ConsumedUnits: consumed[meterID],
			CreditedUnits: credited[meterID],
			Balance:       credited[meterID] - consumed[meterID],
			UpdatedAt:     now,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MeterID.String() < result[j].MeterID.String()
	})
	return result
}
