package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
)

const (
	bodyPartsFn   = "get_body_parts"
	musclePartsFn = "get_muscle_parts"
)

// ReferenceService reads the exercise vocabularies. Names are translation
// keys; callers resolve them through the translation cache.
type ReferenceService interface {
	BodyParts(ctx context.Context) ([]models.ReferenceValue, error)
	MuscleParts(ctx context.Context) ([]models.ReferenceValue, error)
}

type referenceService struct {
	data backend.DataClient
}

func NewReferenceService(data backend.DataClient) ReferenceService {
	return &referenceService{data: data}
}

func (r *referenceService) BodyParts(ctx context.Context) ([]models.ReferenceValue, error) {
	return r.list(ctx, bodyPartsFn)
}

func (r *referenceService) MuscleParts(ctx context.Context) ([]models.ReferenceValue, error) {
	return r.list(ctx, musclePartsFn)
}

func (r *referenceService) list(ctx context.Context, fn string) ([]models.ReferenceValue, error) {
	var out []models.ReferenceValue
	if err := r.data.RPC(ctx, fn, nil, &out); err != nil {
		return nil, fmt.Errorf("%s error: %w", fn, err)
	}
	return out, nil
}
