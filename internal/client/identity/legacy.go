package identity

import (
	"context"

	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gymrecord/internal/common"
)

// LegacyStore reads and drops the Google identity cached by older client
// versions.
type LegacyStore interface {
	Load(ctx context.Context) (*models.LegacyLocalUser, error)
	Delete(ctx context.Context) error
}

type MetadataLegacyStore struct {
	repo metadata.Repository
}

func NewMetadataLegacyStore(repo metadata.Repository) *MetadataLegacyStore {
	return &MetadataLegacyStore{repo: repo}
}

// Load returns nil without error when nothing is cached.
func (s *MetadataLegacyStore) Load(ctx context.Context) (*models.LegacyLocalUser, error) {
	var u models.LegacyLocalUser
	ok, err := metadata.LoadJSON(ctx, s.repo, common.LegacyUserStorageKey, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *MetadataLegacyStore) Save(ctx context.Context, u *models.LegacyLocalUser) error {
	return metadata.StoreJSON(ctx, s.repo, common.LegacyUserStorageKey, u)
}

func (s *MetadataLegacyStore) Delete(ctx context.Context) error {
	return s.repo.Delete(ctx, common.LegacyUserStorageKey)
}
