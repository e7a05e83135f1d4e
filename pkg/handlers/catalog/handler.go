package catalog

import (
	"net/http"
	"sort"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/handlers/respond"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Source is a provider catalog that may be swapped at any time.
type Source interface {
	Provider() string
	Current() *domain.Catalog
}

type Handler struct {
	sources map[string]Source
}

func NewHandler(sources ...Source) *Handler {
	m := make(map[string]Source, len(sources))
	for _, s := range sources {
		m[s.Provider()] = s
	}
	return &Handler{sources: m}
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers := make([]string, 0, len(h.sources))
	for p := range h.sources {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	respond.JSON(w, r, http.StatusOK, providers)
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	source, ok := h.sources[provider]
	if !ok {
		respond.Error(w, r, http.StatusNotFound, respond.MsgNotFound, map[string]string{"provider": "unknown provider " + provider})
		return
	}

	snapshot := source.Current()
	if snapshot == nil {
		zerolog.Ctx(r.Context()).Error().Str("provider", provider).Msg("catalog has no snapshot")
		respond.InternalError(w, r)
		return
	}

	respond.JSON(w, r, http.StatusOK, adapters.MapCatalogDomainToApi(snapshot))
}
