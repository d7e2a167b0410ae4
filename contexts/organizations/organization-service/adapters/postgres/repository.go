package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"meridian/contexts/organizations/organization-service/domain/entities"
	domainerrors "meridian/contexts/organizations/organization-service/domain/errors"
	"meridian/contexts/organizations/organization-service/ports"
)

// Repository is the gorm-backed adapter for organization persistence.
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

// AutoMigrate creates the organization tables. Used by the embedded-database
// wiring; production postgres is migrated out of band.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&organizationModel{},
		&accountModel{},
		&memberModel{},
	)
}

func (r *Repository) GetOrganization(ctx context.Context, id uuid.UUID) (entities.Organization, error) {
	var row organizationModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Organization{}, domainerrors.ErrOrganizationNotFound
		}
		return entities.Organization{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListOrganizations(ctx context.Context, filter ports.OrganizationFilter) ([]entities.Organization, int, error) {
	tx := r.db.WithContext(ctx).Model(&organizationModel{})
	if filter.Slug != "" {
		tx = tx.Where("slug = ?", filter.Slug)
	}
	if filter.MemberUserID != nil {
		tx = tx.Where(
			"public OR organization_id IN (?)",
			r.db.Model(&memberModel{}).
				Select("organization_id").
				Where("user_id = ?", *filter.MemberUserID),
		)
	} else {
		tx = tx.Where("public")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []organizationModel
	if err := tx.Order("slug ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	items := make([]entities.Organization, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, int(total), nil
}

// CreateOrganization writes the organization and its creator membership in
// one transaction so a failed membership insert leaves no orphan tenant.
func (r *Repository) CreateOrganization(ctx context.Context, organization entities.Organization, creator entities.Member) error {
	orgRow := organizationModelFromEntity(organization)
	memberRow := memberModelFromEntity(creator)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&orgRow).Error; err != nil {
			return err
		}
		return tx.Create(&memberRow).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateOrganization(ctx context.Context, organization entities.Organization) error {
	result := r.db.WithContext(ctx).
		Model(&organizationModel{}).
		Where("organization_id = ?", organization.ID).
		Updates(map[string]any{
			"name":        organization.Name,
			"public":      organization.Public,
			"modified_at": organization.ModifiedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrganizationNotFound
	}
	return nil
}

func (r *Repository) SetOrganizationAccount(ctx context.Context, organizationID uuid.UUID, accountID uuid.UUID, modifiedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&organizationModel{}).
		Where("organization_id = ?", organizationID).
		Updates(map[string]any{
			"account_id":  accountID,
			"modified_at": modifiedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrganizationNotFound
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id uuid.UUID) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetMember(ctx context.Context, userID uuid.UUID, organizationID uuid.UUID) (entities.Member, bool, error) {
	var row memberModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", userID, organizationID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, false, nil
		}
		return entities.Member{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListMembersByOrganization(ctx context.Context, organizationID uuid.UUID) ([]entities.Member, error) {
	var rows []memberModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	members := make([]entities.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toEntity())
	}
	return members, nil
}

// ListMembershipsByUser feeds the decision engine's membership directory.
func (r *Repository) ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]entities.Member, error) {
	var rows []memberModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("organization_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	members := make([]entities.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toEntity())
	}
	return members, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type organizationModel struct {
	OrganizationID uuid.UUID  `gorm:"column:organization_id;primaryKey"`
	Name           string     `gorm:"column:name"`
	Slug           string     `gorm:"column:slug;uniqueIndex"`
	Public         bool       `gorm:"column:public"`
	AccountID      *uuid.UUID `gorm:"column:account_id"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	ModifiedAt     time.Time  `gorm:"column:modified_at"`
}

func (organizationModel) TableName() string { return "organizations" }

func (m organizationModel) toEntity() entities.Organization {
	return entities.Organization{
		ID:         m.OrganizationID,
		Name:       m.Name,
		Slug:       m.Slug,
		Public:     m.Public,
		AccountID:  m.AccountID,
		CreatedAt:  m.CreatedAt.UTC(),
		ModifiedAt: m.ModifiedAt.UTC(),
	}
}

func organizationModelFromEntity(organization entities.Organization) organizationModel {
	return organizationModel{
		OrganizationID: organization.ID,
		Name:           organization.Name,
		Slug:           organization.Slug,
		Public:         organization.Public,
		AccountID:      organization.AccountID,
		CreatedAt:      organization.CreatedAt.UTC(),
		ModifiedAt:     organization.ModifiedAt.UTC(),
	}
}

type accountModel struct {
	AccountID           uuid.UUID  `gorm:"column:account_id;primaryKey"`
	OwnerUserID         *uuid.UUID `gorm:"column:owner_user_id"`
	OwnerOrganizationID *uuid.UUID `gorm:"column:owner_organization_id"`
	Country             string     `gorm:"column:country"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
}

func (accountModel) TableName() string { return "accounts" }

func (m accountModel) toEntity() entities.Account {
	return entities.Account{
		ID:                  m.AccountID,
		OwnerUserID:         m.OwnerUserID,
		OwnerOrganizationID: m.OwnerOrganizationID,
		Country:             m.Country,
		CreatedAt:           m.CreatedAt.UTC(),
	}
}

type memberModel struct {
	UserID         uuid.UUID `gorm:"column:user_id;primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;primaryKey"`
	Admin          bool      `gorm:"column:admin"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (memberModel) TableName() string { return "organization_members" }

func (m memberModel) toEntity() entities.Member {
	return entities.Member{
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		Admin:          m.Admin,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func memberModelFromEntity(member entities.Member) memberModel {
	return memberModel{
		UserID:         member.UserID,
		OrganizationID: member.OrganizationID,
		Admin:          member.Admin,
		CreatedAt:      member.CreatedAt.UTC(),
	}
}
