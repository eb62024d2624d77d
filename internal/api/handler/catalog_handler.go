package handler

import (
	"encoding/json"
	"net/http"

	"andromeda/internal/api/middleware"
	"andromeda/internal/app/service"
	"andromeda/internal/common"
	"andromeda/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterBehaviorRoutes mounts the behavior catalog. Reads are open to all
// staff; writes are limited to teachers and admins.
func (h *CatalogHandler) RegisterBehaviorRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.RequireRole(model.RoleTeacher, model.RoleParaeducator, model.RoleAdmin, model.RoleSuperAdmin))

	r.Get("/", h.listBehaviors)
	r.Get("/{behaviorID}", h.getBehavior)

	r.Group(func(writes chi.Router) {
		writes.Use(middleware.RequireRole(model.RoleTeacher, model.RoleAdmin, model.RoleSuperAdmin))
		writes.Post("/", h.createBehavior)
		writes.Put("/{behaviorID}", h.updateBehavior)
		writes.Delete("/{behaviorID}", h.deleteBehavior)
	})
}

// RegisterResourceRoutes mounts one of the intervention catalogs (strategies,
// supports or accommodations); the three share handlers and differ only in
// kind.
func (h *CatalogHandler) RegisterResourceRoutes(kind model.ResourceKind) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(middleware.Authenticator)
		r.Use(middleware.RequireRole(model.RoleTeacher, model.RoleParaeducator, model.RoleAdmin, model.RoleSuperAdmin))

		r.Get("/", h.listResources(kind))
		r.Get("/{resourceID}", h.getResource(kind))

		r.Group(func(writes chi.Router) {
			writes.Use(middleware.RequireRole(model.RoleTeacher, model.RoleAdmin, model.RoleSuperAdmin))
			writes.Post("/", h.createResource(kind))
			writes.Put("/{resourceID}", h.updateResource(kind))
			writes.Delete("/{resourceID}", h.deleteResource(kind))
		})
	}
}

func (h *CatalogHandler) listBehaviors(w http.ResponseWriter, r *http.Request) {
	behaviors, err := h.catalogService.ListBehaviors(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, behaviors)
}

func (h *CatalogHandler) getBehavior(w http.ResponseWriter, r *http.Request) {
	behavior, err := h.catalogService.GetBehavior(r.Context(), chi.URLParam(r, "behaviorID"))
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, behavior)
}

func (h *CatalogHandler) createBehavior(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateBehaviorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	behavior, err := h.catalogService.CreateBehavior(r.Context(), userID, req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, behavior)
}

func (h *CatalogHandler) updateBehavior(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.UpdateBehaviorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	behavior, err := h.catalogService.UpdateBehavior(r.Context(), chi.URLParam(r, "behaviorID"), userID, req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, behavior)
}

func (h *CatalogHandler) deleteBehavior(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteBehavior(r.Context(), chi.URLParam(r, "behaviorID")); err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Behavior deleted successfully."})
}

func (h *CatalogHandler) listResources(kind model.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resources, err := h.catalogService.ListResources(r.Context(), kind)
		if err != nil {
			common.RespondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, resources)
	}
}

func (h *CatalogHandler) getResource(kind model.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, err := h.catalogService.GetResource(r.Context(), kind, chi.URLParam(r, "resourceID"))
		if err != nil {
			common.RespondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, resource)
	}
}

func (h *CatalogHandler) createResource(kind model.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var req service.CreateResourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}

		resource, err := h.catalogService.CreateResource(r.Context(), kind, userID, req)
		if err != nil {
			common.RespondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusCreated, resource)
	}
}

func (h *CatalogHandler) updateResource(kind model.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var req service.UpdateResourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}

		resource, err := h.catalogService.UpdateResource(r.Context(), kind, chi.URLParam(r, "resourceID"), userID, req)
		if err != nil {
			common.RespondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, resource)
	}
}

func (h *CatalogHandler) deleteResource(kind model.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.catalogService.DeleteResource(r.Context(), kind, chi.URLParam(r, "resourceID")); err != nil {
			common.RespondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully."})
	}
}
