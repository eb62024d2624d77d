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

type AdminHandler struct {
	adminService *service.AdminService
	userService  *service.UserService
}

func NewAdminHandler(adminService *service.AdminService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{adminService: adminService, userService: userService}
}

// RegisterRoutes mounts the account administration endpoints. Everything here
// requires an authenticated admin or super admin.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin))

	r.Post("/approve-user", h.approveUser)
	r.Post("/reject-user", h.rejectUser)
	r.Get("/pending-users", h.pendingUsers)
	r.Get("/approved-users-recent", h.recentlyApproved)

	r.Route("/educators", func(r chi.Router) {
		r.Get("/", h.listEducators)
		r.Post("/", h.createEducator)
		r.Put("/{educatorID}", h.updateEducator)
		r.Delete("/{educatorID}", h.deleteEducator)
		r.Patch("/{educatorID}/active", h.setEducatorActive)
	})
}

func (h *AdminHandler) approveUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.ApproveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.adminService.Approve(r.Context(), req, actorID)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) rejectUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.RejectUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.adminService.Reject(r.Context(), req, actorID)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) pendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.PendingUsers(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) recentlyApproved(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.RecentlyApproved(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) listEducators(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.Educators(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) createEducator(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateEducatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.adminService.CreateEducator(r.Context(), req, actorID)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *AdminHandler) updateEducator(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	educatorID := chi.URLParam(r, "educatorID")

	var req service.UpdateEducatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.adminService.UpdateEducator(r.Context(), educatorID, req, actorID)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) deleteEducator(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	educatorID := chi.URLParam(r, "educatorID")

	if err := h.adminService.DeleteEducator(r.Context(), educatorID, actorID); err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Educator deleted successfully."})
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *AdminHandler) setEducatorActive(w http.ResponseWriter, r *http.Request) {
	educatorID := chi.URLParam(r, "educatorID")

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.IsActive == nil {
		common.RespondWithError(w, http.StatusBadRequest, "is_active is required")
		return
	}

	user, err := h.userService.SetActive(r.Context(), educatorID, *req.IsActive)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
