package handlers

import (
	"net/http"

	"github.com/agentstation/productmap/internal/server/filter"
	"github.com/agentstation/productmap/internal/server/response"
	"github.com/agentstation/productmap/pkg/logging"
)

// HandleListProducts handles GET /api/v1/products.
// @Summary List products
// @Description Current view of the user's catalog, loading it on first use
// @Tags products
// @Produce json
// @Param X-User-ID header string true "User id"
// @Param favorites query boolean false "Only favorites"
// @Param q query string false "Case-insensitive name search"
// @Param limit query integer false "Maximum number of results (default: 100, max: 1000)"
// @Param offset query integer false "Result offset for pagination"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/products [get].
func (h *Handlers) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	q := filter.ParseProductQuery(r)

	s, ok := h.session(w, r, q.Favorites)
	if !ok {
		return
	}

	// Check cache
	cacheKey := q.CacheKey(s.UserID)
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	if err := h.ensureLoaded(r.Context(), s); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	list := s.Engine.Search(q.Query)
	total := len(list)

	result := map[string]any{
		"products": q.Page(list),
		"pagination": map[string]any{
			"total":  total,
			"limit":  q.Limit,
			"offset": q.Offset,
		},
		"view":  s.View(),
		"query": q.Query,
	}

	// Only settled catalogs are cached
	if !s.Engine.State().Loading {
		h.cache.Set(cacheKey, result)
	}

	response.OK(w, result)
}

// HandleGetProduct handles GET /api/v1/products/{id}.
// @Summary Get product
// @Description Product of the user's catalog by id
// @Tags products
// @Produce json
// @Param X-User-ID header string true "User id"
// @Param id path string true "Product id"
// @Success 200 {object} response.Response{data=products.Product}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/products/{id} [get].
func (h *Handlers) HandleGetProduct(w http.ResponseWriter, r *http.Request, productID string) {
	s, ok := h.session(w, r, false)
	if !ok {
		return
	}
	if err := h.ensureLoaded(r.Context(), s); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	product, err := s.Engine.Product(productID)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, product)
}

// HandleLoad handles POST /api/v1/products/load.
// @Summary Load catalog
// @Description Loads the user's catalog and waits for the outcome
// @Tags products
// @Produce json
// @Param X-User-ID header string true "User id"
// @Param favorites query boolean false "Load the favorites view"
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/products/load [post].
func (h *Handlers) HandleLoad(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, filter.ParseFavorites(r))
	if !ok {
		return
	}

	task := s.Engine.Load(r.Context())
	outcome, err := task.Wait(r.Context())
	h.invalidate(s.UserID)
	if err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Str("task_id", task.ID()).Msg("Load failed")
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, map[string]any{
		"task_id":     task.ID(),
		"outcome":     outcome,
		"duration_ms": task.Duration().Milliseconds(),
		"state":       s.Engine.State(),
	})
}

// HandleToggleFavorite handles POST /api/v1/products/{id}/favorite.
// @Summary Toggle favorite
// @Description Flips the user's favorite membership of a product
// @Tags products
// @Produce json
// @Param X-User-ID header string true "User id"
// @Param id path string true "Product id"
// @Param favorites query boolean false "Toggle through the favorites view"
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/products/{id}/favorite [post].
func (h *Handlers) HandleToggleFavorite(w http.ResponseWriter, r *http.Request, productID string) {
	s, ok := h.session(w, r, filter.ParseFavorites(r))
	if !ok {
		return
	}
	ctx := logging.WithProduct(r.Context(), productID)
	if err := h.ensureLoaded(ctx, s); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	task := s.Engine.ToggleFavorite(ctx, productID)
	outcome, err := task.Wait(ctx)
	h.invalidate(s.UserID)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Toggling favorite failed")
		response.ErrorFromType(w, err)
		return
	}
	h.refreshPeer(s)

	result := map[string]any{
		"task_id": task.ID(),
		"outcome": outcome,
	}
	if product, err := s.Engine.Product(productID); err == nil {
		result["product"] = product
		result["favorite"] = product.IsFavorite
	}
	response.OK(w, result)
}
