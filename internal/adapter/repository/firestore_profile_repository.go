package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{
		client: client,
	}
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	doc, err := r.client.Collection(profilesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Profile", err)
		}
		return nil, errors.Dependency("Failed to get profile", err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}
	return &profile, nil
}

func (r *firestoreProfileRepository) Upsert(ctx context.Context, profile *entity.Profile) error {
	_, err := r.client.Collection(profilesCollection).Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return errors.Dependency("Failed to save profile", err)
	}
	return nil
}

func (r *firestoreProfileRepository) ListAll(ctx context.Context) ([]*entity.Profile, error) {
	return r.collect(r.client.Collection(profilesCollection).Documents(ctx))
}

func (r *firestoreProfileRepository) ListByRole(ctx context.Context, role string) ([]*entity.Profile, error) {
	return r.collect(r.client.Collection(profilesCollection).Where("role", "==", role).Documents(ctx))
}

func (r *firestoreProfileRepository) collect(iter *firestore.DocumentIterator) ([]*entity.Profile, error) {
	defer iter.Stop()

	profiles := []*entity.Profile{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Dependency("Failed to list profiles", err)
		}

		var profile entity.Profile
		if err := doc.DataTo(&profile); err != nil {
			return nil, errors.Internal("Failed to parse profile data", err)
		}
		profiles = append(profiles, &profile)
	}
	return profiles, nil
}
