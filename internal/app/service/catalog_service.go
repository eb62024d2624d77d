package service

import (
	"context"
	"errors"
	"fmt"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"
	"andromeda/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// CatalogService manages the behavior catalog and the three intervention
// catalogs (strategies, supports, accommodations).
type CatalogService struct {
	behaviorRepo repository.BehaviorRepository
	resourceRepo repository.ResourceRepository
}

func NewCatalogService(behaviorRepo repository.BehaviorRepository, resourceRepo repository.ResourceRepository) *CatalogService {
	return &CatalogService{behaviorRepo: behaviorRepo, resourceRepo: resourceRepo}
}

type CreateBehaviorRequest struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Type             string  `json:"type"`
	ShortDescription string  `json:"short_description"`
	LongDescription  *string `json:"long_description,omitempty"`
}

func (s *CatalogService) CreateBehavior(ctx context.Context, userID string, req CreateBehaviorRequest) (*model.Behavior, error) {
	if req.Name == "" || req.ShortDescription == "" {
		return nil, fmt.Errorf("name and short_description are required: %w", common.ErrBadRequest)
	}
	category := model.BehaviorCategory(req.Category)
	typ := model.BehaviorType(req.Type)
	if !model.ValidBehaviorType(category, typ) {
		return nil, fmt.Errorf("invalid category/type pairing %q/%q: %w", req.Category, req.Type, common.ErrBadRequest)
	}

	behavior := &model.Behavior{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Slug:             slug.Make(req.Name),
		Category:         category,
		Type:             typ,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		CreatedByID:      userID,
	}
	if err := s.behaviorRepo.Create(ctx, behavior); err != nil {
		return nil, fmt.Errorf("failed to create behavior: %w", err)
	}
	return behavior, nil
}

func (s *CatalogService) GetBehavior(ctx context.Context, id string) (*model.Behavior, error) {
	behavior, err := s.behaviorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("behavior with ID %s not found: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load behavior: %w", err)
	}
	return behavior, nil
}

func (s *CatalogService) ListBehaviors(ctx context.Context, category string) ([]model.Behavior, error) {
	if category != "" {
		if c := model.BehaviorCategory(category); c != model.CategoryAntecedentMotivation && c != model.CategoryProblemBehavior {
			return nil, fmt.Errorf("invalid behavior category %q: %w", category, common.ErrBadRequest)
		}
	}
	behaviors, err := s.behaviorRepo.List(ctx, model.BehaviorCategory(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list behaviors: %w", err)
	}
	return behaviors, nil
}

type UpdateBehaviorRequest struct {
	Name             *string `json:"name,omitempty"`
	Category         *string `json:"category,omitempty"`
	Type             *string `json:"type,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	LongDescription  *string `json:"long_description,omitempty"`
	UpdatedByName    *string `json:"updated_by_name,omitempty"`
}

func (s *CatalogService) UpdateBehavior(ctx context.Context, id, userID string, req UpdateBehaviorRequest) (*model.Behavior, error) {
	behavior, err := s.behaviorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("behavior with ID %s not found: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load behavior: %w", err)
	}

	if req.Name != nil && *req.Name != "" {
		behavior.Name = *req.Name
		behavior.Slug = slug.Make(*req.Name)
	}
	if req.Category != nil {
		behavior.Category = model.BehaviorCategory(*req.Category)
	}
	if req.Type != nil {
		behavior.Type = model.BehaviorType(*req.Type)
	}
	if !model.ValidBehaviorType(behavior.Category, behavior.Type) {
		return nil, fmt.Errorf("invalid category/type pairing %q/%q: %w", behavior.Category, behavior.Type, common.ErrBadRequest)
	}
	if req.ShortDescription != nil {
		behavior.ShortDescription = *req.ShortDescription
	}
	if req.LongDescription != nil {
		behavior.LongDescription = req.LongDescription
	}
	behavior.UpdatedByID = &userID
	behavior.UpdatedByName = req.UpdatedByName

	if err := s.behaviorRepo.Update(ctx, behavior); err != nil {
		return nil, fmt.Errorf("failed to update behavior: %w", err)
	}
	return behavior, nil
}

func (s *CatalogService) DeleteBehavior(ctx context.Context, id string) error {
	if err := s.behaviorRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("behavior with ID %s not found: %w", id, common.ErrNotFound)
		}
		return fmt.Errorf("failed to delete behavior: %w", err)
	}
	return nil
}

type CreateResourceRequest struct {
	Name             string  `json:"name"`
	Category         *string `json:"category,omitempty"`
	Type             *string `json:"type,omitempty"`
	ShortDescription string  `json:"short_description"`
	LongDescription  *string `json:"long_description,omitempty"`
	CreatedByName    *string `json:"created_by_name,omitempty"`
}

func (s *CatalogService) CreateResource(ctx context.Context, kind model.ResourceKind, userID string, req CreateResourceRequest) (*model.Resource, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required: %w", common.ErrBadRequest)
	}

	resource := &model.Resource{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Slug:             slug.Make(req.Name),
		Category:         req.Category,
		Type:             req.Type,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		CreatedByID:      userID,
		CreatedByName:    req.CreatedByName,
	}
	if err := s.resourceRepo.Create(ctx, kind, resource); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	return resource, nil
}

func (s *CatalogService) GetResource(ctx context.Context, kind model.ResourceKind, id string) (*model.Resource, error) {
	resource, err := s.resourceRepo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%s with ID %s not found: %w", kind, id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	return resource, nil
}

func (s *CatalogService) ListResources(ctx context.Context, kind model.ResourceKind) ([]model.Resource, error) {
	resources, err := s.resourceRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s catalog: %w", kind, err)
	}
	return resources, nil
}

type UpdateResourceRequest struct {
	Name             *string `json:"name,omitempty"`
	Category         *string `json:"category,omitempty"`
	Type             *string `json:"type,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	LongDescription  *string `json:"long_description,omitempty"`
	UpdatedByName    *string `json:"updated_by_name,omitempty"`
}

func (s *CatalogService) UpdateResource(ctx context.Context, kind model.ResourceKind, id, userID string, req UpdateResourceRequest) (*model.Resource, error) {
	resource, err := s.resourceRepo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%s with ID %s not found: %w", kind, id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	if req.Name != nil && *req.Name != "" {
		resource.Name = *req.Name
		resource.Slug = slug.Make(*req.Name)
	}
	if req.Category != nil {
		resource.Category = req.Category
	}
	if req.Type != nil {
		resource.Type = req.Type
	}
	if req.ShortDescription != nil {
		resource.ShortDescription = *req.ShortDescription
	}
	if req.LongDescription != nil {
		resource.LongDescription = req.LongDescription
	}
	resource.UpdatedByID = &userID
	resource.UpdatedByName = req.UpdatedByName

	if err := s.resourceRepo.Update(ctx, kind, resource); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}
	return resource, nil
}

func (s *CatalogService) DeleteResource(ctx context.Context, kind model.ResourceKind, id string) error {
	if err := s.resourceRepo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%s with ID %s not found: %w", kind, id, common.ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}
