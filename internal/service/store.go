// Package service implements the business logic for store operations:
// request validation, geocoding orchestration, and delegation to the repo.
// Validation failures map to domain.ErrValidation, which handlers translate
// to HTTP 404 per this service's convention.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ymorita/store-directory/internal/domain"
	"github.com/ymorita/store-directory/internal/geo"
	"github.com/ymorita/store-directory/internal/repo"
)

// maxFieldLen is the upper bound, in characters, for every user-supplied
// string: store fields, tag names, and list filters.
const maxFieldLen = 100

// Geocoder resolves an address to coordinates. Satisfied by *geo.Client;
// defined here so service tests can inject a stub.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (geo.Coordinates, error)
}

// CreateStoreInput carries a validated-on-entry create request.
type CreateStoreInput struct {
	Name    string
	Address string
	Content string
	Tags    []string
}

// UpdateStoreInput carries a partial update. Nil fields are left untouched;
// a non-nil Tags slice is the full target tag set.
type UpdateStoreInput struct {
	StoreID uuid.UUID
	Name    *string
	Address *string
	Content *string
	Tags    []string
}

// StoreService implements business logic for store operations.
// Geocoding always happens before any transaction opens, so an unreachable
// geocoder can never hold a database transaction open.
type StoreService struct {
	stores   repo.StoreRepo
	geocoder Geocoder
	log      *slog.Logger
}

// NewStoreService constructs a StoreService backed by the provided repo and
// geocoder. A nil logger falls back to slog.Default().
func NewStoreService(stores repo.StoreRepo, geocoder Geocoder, log *slog.Logger) *StoreService {
	if log == nil {
		log = slog.Default()
	}
	return &StoreService{stores: stores, geocoder: geocoder, log: log}
}

// List returns stores matching the filter, each with its tags.
// Filter values longer than 100 characters are a validation failure.
// Always returns a non-nil slice.
func (s *StoreService) List(ctx context.Context, filter domain.ListFilter) ([]domain.StoreWithTags, error) {
	if utf8.RuneCountInString(filter.NamePattern) > maxFieldLen {
		return nil, fmt.Errorf("%w: searchName must be at most %d characters", domain.ErrValidation, maxFieldLen)
	}
	if utf8.RuneCountInString(filter.TagName) > maxFieldLen {
		return nil, fmt.Errorf("%w: tagName must be at most %d characters", domain.ErrValidation, maxFieldLen)
	}

	stores, err := s.stores.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.StoreService.List: %w", err)
	}
	if stores == nil {
		stores = []domain.StoreWithTags{}
	}
	return stores, nil
}

// GetByID returns a single store by its external id.
func (s *StoreService) GetByID(ctx context.Context, storeID uuid.UUID) (domain.StoreWithTags, error) {
	store, err := s.stores.GetByStoreID(ctx, storeID)
	if err != nil {
		return domain.StoreWithTags{}, fmt.Errorf("service.StoreService.GetByID: %w", err)
	}
	return store, nil
}

// Create validates the request, geocodes the address, then persists the
// store and its tag links in one transaction. A geocoding failure means
// nothing is persisted.
func (s *StoreService) Create(ctx context.Context, in CreateStoreInput) (uuid.UUID, error) {
	if err := validateCreate(in); err != nil {
		return uuid.Nil, err
	}

	coords, err := s.geocoder.Lookup(ctx, in.Address)
	if err != nil {
		s.log.WarnContext(ctx, "geocoding failed", "operation", "create", "address", in.Address, "error", err)
		return uuid.Nil, fmt.Errorf("service.StoreService.Create: %w", err)
	}

	store := domain.Store{
		Name:    in.Name,
		Address: in.Address,
		Content: in.Content,
		Lat:     coords.Lat,
		Lng:     coords.Lng,
	}
	id, err := s.stores.Create(ctx, store, in.Tags)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.StoreService.Create: %w", err)
	}

	s.log.InfoContext(ctx, "store created", "store_id", id, "store_name", in.Name, "tags", len(in.Tags))
	return id, nil
}

// Update validates the request; if the address changed it is re-geocoded and
// both coordinates accompany it into the patch. The repo applies everything
// in one transaction, so no partial field update can persist.
func (s *StoreService) Update(ctx context.Context, in UpdateStoreInput) error {
	if err := validateUpdate(in); err != nil {
		return err
	}

	patch := domain.StorePatch{
		Name:    in.Name,
		Address: in.Address,
		Content: in.Content,
		Tags:    in.Tags,
	}
	if in.Address != nil {
		coords, err := s.geocoder.Lookup(ctx, *in.Address)
		if err != nil {
			s.log.WarnContext(ctx, "geocoding failed", "operation", "update", "store_id", in.StoreID, "error", err)
			return fmt.Errorf("service.StoreService.Update: %w", err)
		}
		patch.Lat = &coords.Lat
		patch.Lng = &coords.Lng
	}

	if err := s.stores.Update(ctx, in.StoreID, patch); err != nil {
		return fmt.Errorf("service.StoreService.Update: %w", err)
	}

	s.log.InfoContext(ctx, "store updated", "store_id", in.StoreID)
	return nil
}

// Delete removes a store and all its tag links.
func (s *StoreService) Delete(ctx context.Context, storeID uuid.UUID) error {
	if err := s.stores.Delete(ctx, storeID); err != nil {
		return fmt.Errorf("service.StoreService.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "store deleted", "store_id", storeID)
	return nil
}

// validateCreate enforces the create request rules: every field 1–100
// characters, at least one tag. The reconciliation layer below accepts an
// empty tag set; requiring one here is request policy, not a reconciler
// constraint.
func validateCreate(in CreateStoreInput) error {
	if err := requireLen("storeName", in.Name); err != nil {
		return err
	}
	if err := requireLen("address", in.Address); err != nil {
		return err
	}
	if err := requireLen("content", in.Content); err != nil {
		return err
	}
	if len(in.Tags) == 0 {
		return fmt.Errorf("%w: tags must not be empty", domain.ErrValidation)
	}
	for _, tag := range in.Tags {
		if err := requireLen("tag", tag); err != nil {
			return err
		}
	}
	return nil
}

// validateUpdate enforces the rules on whichever fields the patch provides.
func validateUpdate(in UpdateStoreInput) error {
	if in.StoreID == uuid.Nil {
		return fmt.Errorf("%w: storeId is required", domain.ErrValidation)
	}
	for name, v := range map[string]*string{
		"storeName": in.Name,
		"address":   in.Address,
		"content":   in.Content,
	} {
		if v == nil {
			continue
		}
		if err := requireLen(name, *v); err != nil {
			return err
		}
	}
	for _, tag := range in.Tags {
		if err := requireLen("tag", tag); err != nil {
			return err
		}
	}
	return nil
}

// requireLen checks the 1–100 character bound, counting runes so multibyte
// names measure the same as the database's VARCHAR(100) columns.
func requireLen(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	if n > maxFieldLen {
		return fmt.Errorf("%w: %s must be at most %d characters", domain.ErrValidation, field, maxFieldLen)
	}
	return nil
}
