package repository

import (
	"context"

	"civiq/internal/domain/entity"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Upsert(ctx context.Context, profile *entity.Profile) error
	ListAll(ctx context.Context) ([]*entity.Profile, error)
	ListByRole(ctx context.Context, role string) ([]*entity.Profile, error)
}
