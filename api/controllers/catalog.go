package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/api/validators"
	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

const maxCategoryLen = 120

// CatalogReader is satisfied by *catalog.Store.
type CatalogReader interface {
	Doors() []catalog.Door
	Categories() []catalog.Category
	GetDoorByID(id string) (catalog.Door, bool)
	GetDoorsByCategoryName(name string) []catalog.Door
	Loading() bool
	Err() string
}

type catalogDoorsResponse struct {
	Doors   []catalog.Door `json:"doors"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
}

type catalogCategoriesResponse struct {
	Categories []catalog.Category `json:"categories"`
	Loading    bool               `json:"loading"`
	Error      string             `json:"error,omitempty"`
}

func catalogUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable")
}

// CatalogDoors lists the door snapshot, optionally narrowed by ?category=.
// A failed load still answers 200 with whatever was last loaded and the
// load error alongside.
func CatalogDoors(store CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		doors := store.Doors()
		if category := validators.QueryString(r, "category", maxCategoryLen); category != "" {
			doors = store.GetDoorsByCategoryName(category)
		}
		if doors == nil {
			doors = []catalog.Door{}
		}
		responses.WriteSuccess(w, catalogDoorsResponse{Doors: doors, Loading: store.Loading(), Error: store.Err()})
	}
}

func CatalogDoor(store CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		doorID := strings.TrimSpace(chi.URLParam(r, "doorId"))
		if doorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "door id is required"))
			return
		}

		door, ok := store.GetDoorByID(doorID)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "door not found"))
			return
		}
		responses.WriteSuccess(w, door)
	}
}

func CatalogCategories(store CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		categories := store.Categories()
		if categories == nil {
			categories = []catalog.Category{}
		}
		responses.WriteSuccess(w, catalogCategoriesResponse{Categories: categories, Loading: store.Loading(), Error: store.Err()})
	}
}

func CatalogSizes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, enums.SizeOptions())
	}
}
