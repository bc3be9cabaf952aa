package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ymorita/store-directory/internal/domain"
	"github.com/ymorita/store-directory/internal/service"
)

// storeResponse is the camelCase JSON shape of one store.
type storeResponse struct {
	StoreID   uuid.UUID `json:"storeId"`
	StoreName string    `json:"storeName"`
	Address   string    `json:"address"`
	Content   string    `json:"content"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Tags      []string  `json:"tags"`
}

type storesResponse struct {
	Stores []storeResponse `json:"stores"`
}

type createStoreRequest struct {
	StoreName string   `json:"storeName"`
	Address   string   `json:"address"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
}

type updateStoreRequest struct {
	StoreID   uuid.UUID `json:"storeId"`
	StoreName *string   `json:"storeName"`
	Address   *string   `json:"address"`
	Content   *string   `json:"content"`
	Tags      []string  `json:"tags"`
}

// handleListStores handles GET /stores?searchName=&tagName=.
func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	filter := domain.ListFilter{
		NamePattern: r.URL.Query().Get("searchName"),
		TagName:     r.URL.Query().Get("tagName"),
	}

	stores, err := s.stores.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, "list_stores", err)
		return
	}

	resp := storesResponse{Stores: make([]storeResponse, len(stores))}
	for i, st := range stores {
		resp.Stores[i] = storeToResponse(st)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleGetStore handles GET /stores/{storeID}.
// A malformed UUID takes the validation path and answers 404; no store can
// exist under an id that does not parse.
func (s *Server) handleGetStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		writeError(w, r, "get_store", validationError("storeId must be a UUID"))
		return
	}

	store, err := s.stores.GetByID(r.Context(), storeID)
	if err != nil {
		writeError(w, r, "get_store", err)
		return
	}

	writeJSON(w, r, http.StatusOK, storeToResponse(store))
}

// handleCreateStore handles POST /stores. Success is 201 with an empty body.
func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "create_store", validationError("request body must be valid JSON"))
		return
	}

	_, err := s.stores.Create(r.Context(), service.CreateStoreInput{
		Name:    req.StoreName,
		Address: req.Address,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, r, "create_store", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// handleUpdateStore handles PATCH /stores. The target store id travels in
// the body. Success is 204 with an empty body.
func (s *Server) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	var req updateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "update_store", validationError("request body must be valid JSON"))
		return
	}

	err := s.stores.Update(r.Context(), service.UpdateStoreInput{
		StoreID: req.StoreID,
		Name:    req.StoreName,
		Address: req.Address,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, r, "update_store", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteStore handles DELETE /stores?storeId=.
func (s *Server) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("storeId"))
	if err != nil {
		writeError(w, r, "delete_store", validationError("storeId must be a UUID"))
		return
	}

	if err := s.stores.Delete(r.Context(), storeID); err != nil {
		writeError(w, r, "delete_store", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// storeToResponse converts a domain.StoreWithTags into the response shape.
func storeToResponse(st domain.StoreWithTags) storeResponse {
	tags := st.Tags
	if tags == nil {
		tags = []string{}
	}
	return storeResponse{
		StoreID:   st.StoreID,
		StoreName: st.Name,
		Address:   st.Address,
		Content:   st.Content,
		Lat:       st.Lat,
		Lng:       st.Lng,
		Tags:      tags,
	}
}
