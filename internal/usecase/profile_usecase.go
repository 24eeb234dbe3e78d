package usecase

import (
	"context"
	"strings"
	"time"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/internal/domain/service"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

type UpdateProfileInput struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	DOB      string `json:"dob" validate:"required"`
	City     string `json:"city" validate:"required,max=80"`
	Area     string `json:"area" validate:"required,max=120"`
	Pincode  string `json:"pincode" validate:"required,numeric,min=4,max=10"`
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	now         func() time.Time
	log         logger.Logger
}

func NewProfileUseCase(profileRepo repository.ProfileRepository, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{profileRepo: profileRepo, now: time.Now, log: log}
}

// GetRole returns the caller's role, creating a citizen profile carrying the
// identity's contact details on first sight.
func (uc *ProfileUseCase) GetRole(ctx context.Context, identity *service.Identity) (string, error) {
	profile, err := uc.profileRepo.GetByID(ctx, identity.UID)
	if err == nil {
		return profile.Role, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return "", err
	}

	profile = &entity.Profile{
		ID:        identity.UID,
		Role:      entity.RoleCitizen,
		Email:     identity.Email,
		Phone:     identity.Phone,
		UpdatedAt: uc.now(),
	}
	if err := uc.profileRepo.Upsert(ctx, profile); err != nil {
		uc.log.Warn("failed to create profile", "user", logger.MaskID(identity.UID), "error", err)
	}
	return entity.RoleCitizen, nil
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}

// UpdateProfile edits the personal fields. Role and contact details are kept.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		profile = &entity.Profile{ID: userID, Role: entity.RoleCitizen}
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"full_name", &in.FullName},
		{"dob", &in.DOB},
		{"city", &in.City},
		{"area", &in.Area},
		{"pincode", &in.Pincode},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, errors.Validation(f.name + " is required")
		}
	}
	if _, err := time.Parse("2006-01-02", in.DOB); err != nil {
		return nil, errors.Validation("dob must be formatted as YYYY-MM-DD")
	}

	profile.FullName = in.FullName
	profile.DOB = in.DOB
	profile.City = in.City
	profile.Area = in.Area
	profile.Pincode = in.Pincode
	profile.UpdatedAt = uc.now()

	if err := uc.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
