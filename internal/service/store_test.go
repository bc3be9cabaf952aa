package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymorita/store-directory/internal/domain"
	"github.com/ymorita/store-directory/internal/geo"
	"github.com/ymorita/store-directory/internal/repo"
	"github.com/ymorita/store-directory/internal/service"
)

// mockStoreRepo is a hand-written test double for repo.StoreRepo.
// Each method is a function field; set only the ones your test needs.
type mockStoreRepo struct {
	list         func(ctx context.Context, filter domain.ListFilter) ([]domain.StoreWithTags, error)
	getByStoreID func(ctx context.Context, storeID uuid.UUID) (domain.StoreWithTags, error)
	create       func(ctx context.Context, store domain.Store, tagNames []string) (uuid.UUID, error)
	update       func(ctx context.Context, storeID uuid.UUID, patch domain.StorePatch) error
	delete       func(ctx context.Context, storeID uuid.UUID) error
}

func (m *mockStoreRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.StoreWithTags, error) {
	return m.list(ctx, f)
}
func (m *mockStoreRepo) GetByStoreID(ctx context.Context, id uuid.UUID) (domain.StoreWithTags, error) {
	return m.getByStoreID(ctx, id)
}
func (m *mockStoreRepo) Create(ctx context.Context, s domain.Store, tags []string) (uuid.UUID, error) {
	return m.create(ctx, s, tags)
}
func (m *mockStoreRepo) Update(ctx context.Context, id uuid.UUID, p domain.StorePatch) error {
	return m.update(ctx, id, p)
}
func (m *mockStoreRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockStoreRepo must satisfy repo.StoreRepo.
var _ repo.StoreRepo = (*mockStoreRepo)(nil)

// mockGeocoder is a test double for service.Geocoder.
type mockGeocoder struct {
	lookup func(ctx context.Context, address string) (geo.Coordinates, error)
}

func (m *mockGeocoder) Lookup(ctx context.Context, address string) (geo.Coordinates, error) {
	return m.lookup(ctx, address)
}

var _ service.Geocoder = (*mockGeocoder)(nil)

// ---- helpers ---------------------------------------------------------------

func fixedGeocoder(lat, lng float64) *mockGeocoder {
	return &mockGeocoder{
		lookup: func(context.Context, string) (geo.Coordinates, error) {
			return geo.Coordinates{Lat: lat, Lng: lng}, nil
		},
	}
}

// panicGeocoder fails the test if the geocoder is reached at all.
func panicGeocoder(t *testing.T) *mockGeocoder {
	return &mockGeocoder{
		lookup: func(context.Context, string) (geo.Coordinates, error) {
			t.Fatal("geocoder must not be called")
			return geo.Coordinates{}, nil
		},
	}
}

func validCreate() service.CreateStoreInput {
	return service.CreateStoreInput{
		Name:    "store1",
		Address: "住所1",
		Content: "内容1",
		Tags:    []string{"タグ1"},
	}
}

// ---- Create ----------------------------------------------------------------

func TestStoreService_Create_PassesCoordinatesToRepo(t *testing.T) {
	var gotStore domain.Store
	var gotTags []string
	repo := &mockStoreRepo{
		create: func(_ context.Context, s domain.Store, tags []string) (uuid.UUID, error) {
			gotStore, gotTags = s, tags
			return uuid.New(), nil
		},
	}
	svc := service.NewStoreService(repo, fixedGeocoder(30, 25), nil)

	id, err := svc.Create(context.Background(), validCreate())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 30.0, gotStore.Lat)
	assert.Equal(t, 25.0, gotStore.Lng)
	assert.Equal(t, "store1", gotStore.Name)
	assert.Equal(t, []string{"タグ1"}, gotTags)
}

func TestStoreService_Create_MissingName(t *testing.T) {
	svc := service.NewStoreService(&mockStoreRepo{}, panicGeocoder(t), nil)

	in := validCreate()
	in.Name = ""

	_, err := svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStoreService_Create_NameTooLong(t *testing.T) {
	svc := service.NewStoreService(&mockStoreRepo{}, panicGeocoder(t), nil)

	in := validCreate()
	in.Name = strings.Repeat("あ", 101)

	_, err := svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStoreService_Create_HundredCharNameIsValid(t *testing.T) {
	repo := &mockStoreRepo{
		create: func(context.Context, domain.Store, []string) (uuid.UUID, error) {
			return uuid.New(), nil
		},
	}
	svc := service.NewStoreService(repo, fixedGeocoder(1, 2), nil)

	in := validCreate()
	in.Name = strings.Repeat("あ", 100)

	_, err := svc.Create(context.Background(), in)

	assert.NoError(t, err)
}

func TestStoreService_Create_EmptyTags(t *testing.T) {
	svc := service.NewStoreService(&mockStoreRepo{}, panicGeocoder(t), nil)

	in := validCreate()
	in.Tags = nil

	_, err := svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStoreService_Create_AddressNotFound_NothingPersisted(t *testing.T) {
	repo := &mockStoreRepo{
		create: func(context.Context, domain.Store, []string) (uuid.UUID, error) {
			t.Fatal("repo must not be called when geocoding fails")
			return uuid.Nil, nil
		},
	}
	gc := &mockGeocoder{
		lookup: func(context.Context, string) (geo.Coordinates, error) {
			return geo.Coordinates{}, domain.ErrAddressNotFound
		},
	}
	svc := service.NewStoreService(repo, gc, nil)

	_, err := svc.Create(context.Background(), validCreate())

	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestStoreService_Create_GeocoderUnreachablePropagates(t *testing.T) {
	gc := &mockGeocoder{
		lookup: func(context.Context, string) (geo.Coordinates, error) {
			return geo.Coordinates{}, domain.ErrGeocoderUnreachable
		},
	}
	svc := service.NewStoreService(&mockStoreRepo{}, gc, nil)

	_, err := svc.Create(context.Background(), validCreate())

	assert.ErrorIs(t, err, domain.ErrGeocoderUnreachable)
}

// ---- Update ----------------------------------------------------------------

func TestStoreService_Update_NoAddressSkipsGeocoding(t *testing.T) {
	var gotPatch domain.StorePatch
	repo := &mockStoreRepo{
		update: func(_ context.Context, _ uuid.UUID, p domain.StorePatch) error {
			gotPatch = p
			return nil
		},
	}
	svc := service.NewStoreService(repo, panicGeocoder(t), nil)

	name := "renamed"
	err := svc.Update(context.Background(), service.UpdateStoreInput{
		StoreID: uuid.New(),
		Name:    &name,
	})

	require.NoError(t, err)
	assert.Nil(t, gotPatch.Lat)
	assert.Nil(t, gotPatch.Lng)
	require.NotNil(t, gotPatch.Name)
	assert.Equal(t, "renamed", *gotPatch.Name)
}

func TestStoreService_Update_AddressTriggersGeocoding(t *testing.T) {
	var gotPatch domain.StorePatch
	repo := &mockStoreRepo{
		update: func(_ context.Context, _ uuid.UUID, p domain.StorePatch) error {
			gotPatch = p
			return nil
		},
	}
	svc := service.NewStoreService(repo, fixedGeocoder(35.6, 139.7), nil)

	addr := "住所2"
	err := svc.Update(context.Background(), service.UpdateStoreInput{
		StoreID: uuid.New(),
		Address: &addr,
	})

	require.NoError(t, err)
	require.NotNil(t, gotPatch.Lat)
	require.NotNil(t, gotPatch.Lng)
	assert.Equal(t, 35.6, *gotPatch.Lat)
	assert.Equal(t, 139.7, *gotPatch.Lng)
}

func TestStoreService_Update_GeocodingFailureAbortsBeforeRepo(t *testing.T) {
	repo := &mockStoreRepo{
		update: func(context.Context, uuid.UUID, domain.StorePatch) error {
			t.Fatal("repo must not be called when geocoding fails")
			return nil
		},
	}
	gc := &mockGeocoder{
		lookup: func(context.Context, string) (geo.Coordinates, error) {
			return geo.Coordinates{}, domain.ErrGeocoderUnreachable
		},
	}
	svc := service.NewStoreService(repo, gc, nil)

	addr := "住所2"
	err := svc.Update(context.Background(), service.UpdateStoreInput{
		StoreID: uuid.New(),
		Address: &addr,
	})

	assert.ErrorIs(t, err, domain.ErrGeocoderUnreachable)
}

func TestStoreService_Update_MissingStoreID(t *testing.T) {
	svc := service.NewStoreService(&mockStoreRepo{}, panicGeocoder(t), nil)

	err := svc.Update(context.Background(), service.UpdateStoreInput{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStoreService_Update_NotFoundPropagates(t *testing.T) {
	repo := &mockStoreRepo{
		update: func(context.Context, uuid.UUID, domain.StorePatch) error {
			return domain.ErrNotFound
		},
	}
	svc := service.NewStoreService(repo, panicGeocoder(t), nil)

	name := "x"
	err := svc.Update(context.Background(), service.UpdateStoreInput{StoreID: uuid.New(), Name: &name})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- List ------------------------------------------------------------------

func TestStoreService_List_FilterTooLong(t *testing.T) {
	svc := service.NewStoreService(&mockStoreRepo{}, panicGeocoder(t), nil)

	_, err := svc.List(context.Background(), domain.ListFilter{
		NamePattern: strings.Repeat("a", 101),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStoreService_List_HundredCharFilterIsValid(t *testing.T) {
	repo := &mockStoreRepo{
		list: func(context.Context, domain.ListFilter) ([]domain.StoreWithTags, error) {
			return []domain.StoreWithTags{}, nil
		},
	}
	svc := service.NewStoreService(repo, panicGeocoder(t), nil)

	_, err := svc.List(context.Background(), domain.ListFilter{
		NamePattern: strings.Repeat("a", 100),
	})

	assert.NoError(t, err)
}

func TestStoreService_List_NeverReturnsNil(t *testing.T) {
	repo := &mockStoreRepo{
		list: func(context.Context, domain.ListFilter) ([]domain.StoreWithTags, error) {
			return nil, nil
		},
	}
	svc := service.NewStoreService(repo, panicGeocoder(t), nil)

	stores, err := svc.List(context.Background(), domain.ListFilter{})

	require.NoError(t, err)
	assert.NotNil(t, stores)
}

// ---- Delete ----------------------------------------------------------------

func TestStoreService_Delete_NotFoundPropagates(t *testing.T) {
	repo := &mockStoreRepo{
		delete: func(context.Context, uuid.UUID) error {
			return fmt.Errorf("repo.StoreRepo.Delete: %w", domain.ErrNotFound)
		},
	}
	svc := service.NewStoreService(repo, panicGeocoder(t), nil)

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
