package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type gormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &gormProfileRepository{db: db}
}

func (r *gormProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	var row profileRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Profile", err)
		}
		return nil, errors.Dependency("Failed to get profile", err)
	}
	return row.toEntity(), nil
}

func (r *gormProfileRepository) Upsert(ctx context.Context, profile *entity.Profile) error {
	row := &profileRow{
		ID:        profile.ID,
		Role:      profile.Role,
		Email:     profile.Email,
		Phone:     profile.Phone,
		FullName:  profile.FullName,
		DOB:       profile.DOB,
		City:      profile.City,
		Area:      profile.Area,
		Pincode:   profile.Pincode,
		UpdatedAt: profile.UpdatedAt,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return errors.Dependency("Failed to save profile", err)
	}
	return nil
}

func (r *gormProfileRepository) ListAll(ctx context.Context) ([]*entity.Profile, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *gormProfileRepository) ListByRole(ctx context.Context, role string) ([]*entity.Profile, error) {
	return r.list(r.db.WithContext(ctx).Where("role = ?", role))
}

func (r *gormProfileRepository) list(query *gorm.DB) ([]*entity.Profile, error) {
	var rows []profileRow
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Dependency("Failed to list profiles", err)
	}
	profiles := make([]*entity.Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].toEntity())
	}
	return profiles, nil
}

func (row *profileRow) toEntity() *entity.Profile {
	return &entity.Profile{
		ID:        row.ID,
		Role:      row.Role,
		Email:     row.Email,
		Phone:     row.Phone,
		FullName:  row.FullName,
		DOB:       row.DOB,
		City:      row.City,
		Area:      row.Area,
		Pincode:   row.Pincode,
		UpdatedAt: row.UpdatedAt,
	}
}
