package service

import (
	"context"
	"errors"

	"github.com/rl1809/clock-shop/internal/core/domain"
)

var ErrNotInShowroom = errors.New("product is not in the showroom")

type ViewerResult struct {
	Viewer domain.Viewer `json:"viewer"`
	Image  string        `json:"image"`
}

// ShowroomService applies viewer interactions for showroom clocks. The viewer
// state is held by the client and sent back with every action.
type ShowroomService struct {
	catalog *CatalogService
}

func NewShowroomService(catalog *CatalogService) *ShowroomService {
	return &ShowroomService{catalog: catalog}
}

func (s *ShowroomService) Apply(ctx context.Context, id domain.ProductID, viewer domain.Viewer, action domain.ViewerAction, delta float64) (ViewerResult, error) {
	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return ViewerResult{}, err
	}
	if p.Collection != domain.CollectionShowroom || len(p.Images) == 0 {
		return ViewerResult{}, ErrNotInShowroom
	}

	viewer.ImageCount = len(p.Images)
	next, err := viewer.Apply(action, delta)
	if err != nil {
		return ViewerResult{}, err
	}

	return ViewerResult{Viewer: next, Image: p.Images[next.ImageIndex]}, nil
}
