package handlers

import (
	"net/http"

	"github.com/agentstation/productmap/internal/server/filter"
	"github.com/agentstation/productmap/internal/server/response"
)

// HandleState handles GET /api/v1/state.
// @Summary Engine state
// @Description Loading flag, last error and counts of the user's engine
// @Tags products
// @Produce json
// @Param X-User-ID header string true "User id"
// @Param favorites query boolean false "State of the favorites view"
// @Success 200 {object} response.Response{data=productmap.State}
// @Router /api/v1/state [get].
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, filter.ParseFavorites(r))
	if !ok {
		return
	}
	response.OK(w, s.Engine.State())
}
