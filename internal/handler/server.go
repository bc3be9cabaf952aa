// Package handler implements the HTTP layer of the store directory API.
// All handlers are methods on Server and are registered on a chi router by
// Routes. Handlers only decode requests, call the service, and translate
// domain outcomes into HTTP statuses; no business logic lives here.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ymorita/store-directory/internal/domain"
	"github.com/ymorita/store-directory/internal/service"
)

// StoreServicer defines the business operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or the service layer.
type StoreServicer interface {
	List(ctx context.Context, filter domain.ListFilter) ([]domain.StoreWithTags, error)
	GetByID(ctx context.Context, storeID uuid.UUID) (domain.StoreWithTags, error)
	Create(ctx context.Context, in service.CreateStoreInput) (uuid.UUID, error)
	Update(ctx context.Context, in service.UpdateStoreInput) error
	Delete(ctx context.Context, storeID uuid.UUID) error
}

// Server holds the handler dependencies.
type Server struct {
	stores StoreServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(stores StoreServicer) *Server {
	return &Server{stores: stores}
}

// Routes registers every endpoint on r. The collection endpoints follow the
// original API surface: update and delete address the collection path and
// carry the store id in the body and query string respectively.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)

	r.Route("/stores", func(r chi.Router) {
		r.Get("/", s.handleListStores)
		r.Post("/", s.handleCreateStore)
		r.Patch("/", s.handleUpdateStore)
		r.Delete("/", s.handleDeleteStore)
		r.Get("/{storeID}", s.handleGetStore)
	})
}
