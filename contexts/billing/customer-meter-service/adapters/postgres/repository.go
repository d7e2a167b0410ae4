package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meridian/contexts/billing/customer-meter-service/domain/entities"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
)

// Repository is the gorm-backed adapter for billing persistence.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// AutoMigrate creates the billing tables. Used by the embedded-database
// wiring; production postgres is migrated out of band.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&customerModel{},
		&meterModel{},
		&usageEventModel{},
		&customerMeterModel{},
	)
}

func (r *Repository) GetCustomer(ctx context.Context, id uuid.UUID) (entities.Customer, error) {
	var row customerModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Customer{}, domainerrors.ErrCustomerNotFound
		}
		return entities.Customer{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCustomerIDsByOrganization(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&customerModel{}).
		Where("organization_id = ?", organizationID).
		Order("customer_id ASC").
		Pluck("customer_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) ListOrganizationIDsWithCustomers(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&customerModel{}).
		Distinct("organization_id").
		Order("organization_id ASC").
		Pluck("organization_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) ListMetersByOrganization(ctx context.Context, organizationID uuid.UUID) ([]entities.Meter, error) {
	var rows []meterModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	meters := make([]entities.Meter, 0, len(rows))
	for _, row := range rows {
		meters = append(meters, row.toEntity())
	}
	return meters, nil
}

func (r *Repository) AppendEvent(ctx context.Context, event entities.UsageEvent) error {
	row := usageEventModelFromEntity(event)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListEventsByCustomer(ctx context.Context, customerID uuid.UUID) ([]entities.UsageEvent, error) {
	var rows []usageEventModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("timestamp ASC, event_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	events := make([]entities.UsageEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEntity())
	}
	return events, nil
}

// ReplaceForCustomer swaps the customer's derived rows in one transaction so
// readers never observe a half-recomputed state.
func (r *Repository) ReplaceForCustomer(ctx context.Context, customerID uuid.UUID, meters []entities.CustomerMeter) error {
	rows := make([]customerMeterModel, 0, len(meters))
	for _, meter := range meters {
		rows = append(rows, customerMeterModelFromEntity(meter))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).
			Delete(&customerMeterModel{}).
			Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_meter_id"}},
			UpdateAll: true,
		}).Create(&rows).Error
	})
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entities.CustomerMeter, error) {
	var rows []customerMeterModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("meter_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	meters := make([]entities.CustomerMeter, 0, len(rows))
	for _, row := range rows {
		meters = append(meters, row.toEntity())
	}
	return meters, nil
}

type customerModel struct {
	CustomerID     uuid.UUID `gorm:"column:customer_id;primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;index"`
	ExternalID     string    `gorm:"column:external_id"`
	Name           string    `gorm:"column:name"`
	Email          string    `gorm:"column:email"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (customerModel) TableName() string { return "customers" }

func (m customerModel) toEntity() entities.Customer {
	return entities.Customer{
		ID:             m.CustomerID,
		OrganizationID: m.OrganizationID,
		ExternalID:     m.ExternalID,
		Name:           m.Name,
		Email:          m.Email,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

type meterModel struct {
	MeterID        uuid.UUID `gorm:"column:meter_id;primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;index"`
	Name           string    `gorm:"column:name"`
	EventName      string    `gorm:"column:event_name"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (meterModel) TableName() string { return "meters" }

func (m meterModel) toEntity() entities.Meter {
	return entities.Meter{
		ID:             m.MeterID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		EventName:      m.EventName,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

type usageEventModel struct {
	EventID        uuid.UUID  `gorm:"column:event_id;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;index"`
	CustomerID     uuid.UUID  `gorm:"column:customer_id;index"`
	Name           string     `gorm:"column:name"`
	Value          float64    `gorm:"column:value"`
	MeterID        *uuid.UUID `gorm:"column:meter_id"`
	Timestamp      time.Time  `gorm:"column:timestamp"`
}

func (usageEventModel) TableName() string { return "usage_events" }

func (m usageEventModel) toEntity() entities.UsageEvent {
	return entities.UsageEvent{
		ID:             m.EventID,
		OrganizationID: m.OrganizationID,
		CustomerID:     m.CustomerID,
		Name:           m.Name,
		Value:          m.Value,
		MeterID:        m.MeterID,
		Timestamp:      m.Timestamp.UTC(),
	}
}

func usageEventModelFromEntity(event entities.UsageEvent) usageEventModel {
	return usageEventModel{
		EventID:        event.ID,
		OrganizationID: event.OrganizationID,
		CustomerID:     event.CustomerID,
		Name:           event.Name,
		Value:          event.Value,
		MeterID:        event.MeterID,
		Timestamp:      event.Timestamp.UTC(),
	}
}

type customerMeterModel struct {
	CustomerMeterID uuid.UUID `gorm:"column:customer_meter_id;primaryKey"`
	CustomerID      uuid.UUID `gorm:"column:customer_id;index"`
	MeterID         uuid.UUID `gorm:"column:meter_id"`
	ConsumedUnits   float64   `gorm:"column:consumed_units"`
	CreditedUnits   float64   `gorm:"column:credited_units"`
	Balance         float64   `gorm:"column:balance"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (customerMeterModel) TableName() string { return "customer_meters" }

func (m customerMeterModel) toEntity() entities.CustomerMeter {
	return entities.CustomerMeter{
		ID:            m.CustomerMeterID,
		CustomerID:    m.CustomerID,
		MeterID:       m.MeterID,
		ConsumedUnits: m.ConsumedUnits,
		CreditedUnits: m.CreditedUnits,
		Balance:       m.Balance,
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func customerMeterModelFromEntity(meter entities.CustomerMeter) customerMeterModel {
	return customerMeterModel{
		CustomerMeterID: meter.ID,
		CustomerID:      meter.CustomerID,
		MeterID:         meter.MeterID,
		ConsumedUnits:   meter.ConsumedUnits,
		CreditedUnits:   meter.CreditedUnits,
		Balance:         meter.Balance,
		UpdatedAt:       meter.UpdatedAt.UTC(),
	}
}
