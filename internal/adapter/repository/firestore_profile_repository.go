package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
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
	doc, err := r.client.Collection("profiles").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Profile", err)
		}
		return nil, errors.Internal("Failed to get profile", err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile", err)
	}
	profile.ID = doc.Ref.ID
	return &profile, nil
}

// GetByIDs returns the profiles that exist; missing ids are absent from the map.
func (r *firestoreProfileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error) {
	profiles := make(map[string]*entity.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection("profiles").Doc(id))
	}

	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, errors.Internal("Failed to get profiles", err)
	}

	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var profile entity.Profile
		if err := doc.DataTo(&profile); err != nil {
			logger.Warn("Error parsing profile %s: %v", doc.Ref.ID, err)
			continue
		}
		profile.ID = doc.Ref.ID
		profiles[profile.ID] = &profile
	}
	return profiles, nil
}

func (r *firestoreProfileRepository) ListInsightsSubscribers(ctx context.Context) ([]*entity.Profile, error) {
	iter := r.client.Collection("profiles").Where("weeklyInsights", "==", true).Documents(ctx)
	defer iter.Stop()

	var profiles []*entity.Profile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list profiles", err)
		}

		var profile entity.Profile
		if err := doc.DataTo(&profile); err != nil {
			logger.Warn("Error parsing profile %s: %v", doc.Ref.ID, err)
			continue
		}
		profile.ID = doc.Ref.ID
		profiles = append(profiles, &profile)
	}
	return profiles, nil
}
