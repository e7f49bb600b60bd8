package gotrue

import (
	"context"

	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gymrecord/internal/common"
)

func (c *Client) persist(ctx context.Context, s *models.Session) error {
	if c.store == nil {
		return nil
	}
	if s == nil {
		return c.store.Delete(ctx, common.SessionStorageKey)
	}
	return metadata.StoreJSON(ctx, c.store, common.SessionStorageKey, s)
}

func (c *Client) load(ctx context.Context) (*models.Session, error) {
	if c.store == nil {
		return nil, nil
	}

	var s models.Session
	ok, err := metadata.LoadJSON(ctx, c.store, common.SessionStorageKey, &s)
	if err != nil || !ok {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	fillFromClaims(&s)
	return &s, nil
}
