package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rjschwei/public-cloud-info-service/internal/models"
	"github.com/rjschwei/public-cloud-info-service/internal/pint"
	"github.com/rjschwei/public-cloud-info-service/internal/render"
	"github.com/rjschwei/public-cloud-info-service/internal/version"
)

type handler struct {
	svc         pint.Service
	log         zerolog.Logger
	redirectURL string
}

// writeErr maps service errors onto the legacy empty-body status codes.
func (h *handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pint.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, pint.ErrBadRequest):
		w.WriteHeader(http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("lookup failed")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// provider extracts and validates the provider path token. Tokens are
// lowercased so /v1/Amazon/... serves the same data as /v1/amazon/...
func (h *handler) provider(w http.ResponseWriter, r *http.Request) (string, bool) {
	provider := strings.ToLower(chi.URLParam(r, "provider"))
	if err := h.svc.AssertProvider(r.Context(), provider); err != nil {
		h.writeErr(w, err)
		return "", false
	}
	return provider, true
}

func (h *handler) redirect(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Location", h.redirectURL)
	w.WriteHeader(http.StatusMovedPermanently)
}

func (h *handler) packageVersion(w http.ResponseWriter, r *http.Request) {
	render.Object(w, r, render.Doc{"package version": version.Version}, "")
}

func (h *handler) providers(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Providers(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, "providers", "provider")
}

func (h *handler) imageStates(w http.ResponseWriter, r *http.Request) {
	docs := make([]render.Doc, 0, len(models.States()))
	for _, state := range models.States() {
		docs = append(docs, render.Doc{"name": string(state)})
	}
	render.List(w, r, docs, "states", "state")
}

func (h *handler) serverTypes(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.ServerTypes(r.Context(), provider)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, "types", "type")
}

func (h *handler) regions(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.Regions(r.Context(), provider)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, "regions", "region")
}

// categoryQueries dispatches the /{category} routes. Unknown categories
// are malformed lookups, reported as an empty 400.
type categoryQuery struct {
	collection string
	element    string
	all        func(pint.Service, context.Context, string) ([]render.Doc, error)
	byRegion   func(pint.Service, context.Context, string, string) ([]render.Doc, error)
}

var categoryQueries = map[string]categoryQuery{
	pint.CategoryImages: {
		collection: "images",
		element:    "image",
		all:        pint.Service.Images,
		byRegion:   pint.Service.ImagesForRegion,
	},
	pint.CategoryServers: {
		collection: "servers",
		element:    "server",
		all:        pint.Service.Servers,
		byRegion:   pint.Service.ServersForRegion,
	},
}

func (h *handler) category(w http.ResponseWriter, r *http.Request) {
	q, ok := categoryQueries[chi.URLParam(r, "category")]
	if !ok {
		h.writeErr(w, pint.ErrBadRequest)
		return
	}
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := q.all(h.svc, r.Context(), provider)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, q.collection, q.element)
}

func (h *handler) categoryForRegion(w http.ResponseWriter, r *http.Request) {
	q, ok := categoryQueries[chi.URLParam(r, "category")]
	if !ok {
		h.writeErr(w, pint.ErrBadRequest)
		return
	}
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := q.byRegion(h.svc, r.Context(), provider, chi.URLParam(r, "region"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, q.collection, q.element)
}

func (h *handler) serversForType(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.ServersForType(r.Context(), provider, chi.URLParam(r, "serverType"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, "servers", "server")
}

func (h *handler) serversForRegionAndType(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.ServersForRegionAndType(r.Context(), provider,
		chi.URLParam(r, "region"), chi.URLParam(r, "serverType"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, "servers", "server")
}

func (h *handler) imagesForState(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.ImagesForState(r.Context(), provider, chi.URLParam(r, "state"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, "images", "image")
}

func (h *handler) imagesForRegionAndState(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.ImagesForRegionAndState(r.Context(), provider,
		chi.URLParam(r, "region"), chi.URLParam(r, "state"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.List(w, r, docs, "images", "image")
}

func (h *handler) dataVersion(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.DataVersion(r.Context(), provider, r.URL.Query().Get("category"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.Object(w, r, doc, "")
}
