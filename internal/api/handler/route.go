// Package handler provides HTTP handlers for the CycleRoute API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cycleroute/cycleroute/internal/api/models"
	"github.com/cycleroute/cycleroute/internal/api/response"
	"github.com/cycleroute/cycleroute/internal/route"
)

// defaultListLimit bounds GET /v1/routes when no limit is given.
const defaultListLimit = 20

// RouteHandler handles route computation and management endpoints.
type RouteHandler struct {
	service *route.Service
	store   route.Store
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *route.Service, store route.Store) *RouteHandler {
	return &RouteHandler{
		service: service,
		store:   store,
	}
}

// ComputeRoute handles POST /v1/routes - compute a route.
func (h *RouteHandler) ComputeRoute(w http.ResponseWriter, r *http.Request) {
	var input models.ComputeRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrs := input.Validate(); len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid route request", fieldErrs)
		return
	}

	computed, err := h.service.Compute(r.Context(), input.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, route.ErrInvalidCoordinates):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, route.ErrAllProvidersFailed):
			response.ServiceUnavailable(w, r, "no routing provider could compute this route")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client went away mid-computation; nothing useful to write.
			response.ServiceUnavailable(w, r, "request cancelled")
		default:
			response.InternalError(w, r, "route computation failed")
		}
		return
	}

	response.Created(w, r, "/v1/routes/"+computed.ID, models.ToRouteResponse(computed))
}

// ListRoutes handles GET /v1/routes - list recently computed routes.
func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 100", []models.FieldError{
				{Field: "limit", Message: "must be between 1 and 100"},
			})
			return
		}
		limit = parsed
	}

	routes, err := h.store.FetchRecent(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "failed to list routes")
		return
	}

	resp := models.RouteListResponse{Routes: make([]models.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		resp.Routes = append(resp.Routes, models.ToRouteResponse(rt))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// GetRoute handles GET /v1/routes/{routeId} - fetch a single route.
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "routeId")

	rt, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to fetch route")
		return
	}

	response.JSON(w, r, http.StatusOK, models.ToRouteResponse(rt))
}

// DeleteRoute handles DELETE /v1/routes/{routeId}.
func (h *RouteHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "routeId")

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to delete route")
		return
	}

	response.NoContent(w, r)
}

// ToggleFavorite handles POST /v1/routes/{routeId}/favorite - flip the
// favorite flag and return the replacement route.
func (h *RouteHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "routeId")

	rt, err := h.store.ToggleFavorite(r.Context(), id)
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to update route")
		return
	}

	response.JSON(w, r, http.StatusOK, models.ToRouteResponse(rt))
}

// ExportRoute handles GET /v1/routes/{routeId}/export - export the route as
// a track log with synthesized timestamps.
func (h *RouteHandler) ExportRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "routeId")

	rt, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to fetch route")
		return
	}

	response.JSON(w, r, http.StatusOK, route.ExportTrackLog(rt))
}
