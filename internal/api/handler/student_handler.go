package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"andromeda/internal/api/middleware"
	"andromeda/internal/app/service"
	"andromeda/internal/common"
	"andromeda/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type StudentHandler struct {
	studentService  *service.StudentService
	trackingService *service.TrackingService
}

func NewStudentHandler(studentService *service.StudentService, trackingService *service.TrackingService) *StudentHandler {
	return &StudentHandler{studentService: studentService, trackingService: trackingService}
}

// RegisterRoutes mounts the student roster, behavior assignment and daily
// tracking endpoints. All of them require an approved staff role.
func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.RequireRole(model.RoleTeacher, model.RoleParaeducator, model.RoleAdmin, model.RoleSuperAdmin))

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{studentID}", h.get)
	r.Put("/{studentID}", h.update)
	r.Delete("/{studentID}", h.delete)

	r.Get("/{studentID}/behaviors", h.assignedBehaviors)
	r.Post("/{studentID}/behaviors", h.assignBehavior)

	r.Post("/{studentID}/tracking/increment", h.recordTracking(model.ActionIncrement))
	r.Post("/{studentID}/tracking/decrement", h.recordTracking(model.ActionDecrement))
	r.Get("/{studentID}/tracking", h.dailyCounters)
	r.Get("/{studentID}/tracking/logs", h.trackingLogs)
}

func (h *StudentHandler) list(w http.ResponseWriter, r *http.Request) {
	students, err := h.studentService.List(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	student, err := h.studentService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) get(w http.ResponseWriter, r *http.Request) {
	student, err := h.studentService.Get(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	student, err := h.studentService.Update(r.Context(), chi.URLParam(r, "studentID"), req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.studentService.Delete(r.Context(), chi.URLParam(r, "studentID")); err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Student deleted successfully."})
}

func (h *StudentHandler) assignedBehaviors(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.studentService.AssignedBehaviors(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assignments)
}

func (h *StudentHandler) assignBehavior(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.AssignBehaviorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	assignment, err := h.studentService.AssignBehavior(r.Context(), chi.URLParam(r, "studentID"), actorID, req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, assignment)
}

func (h *StudentHandler) recordTracking(action model.TrackingAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var req service.RecordTrackingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
		req.Action = string(action)

		resp, err := h.trackingService.Record(r.Context(), chi.URLParam(r, "studentID"), actorID, req)
		if err != nil {
			common.RespondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, resp)
	}
}

func (h *StudentHandler) dailyCounters(w http.ResponseWriter, r *http.Request) {
	counters, err := h.trackingService.DailyCounters(r.Context(), chi.URLParam(r, "studentID"), r.URL.Query().Get("date"))
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, counters)
}

func (h *StudentHandler) trackingLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	logs, err := h.trackingService.Logs(r.Context(), chi.URLParam(r, "studentID"), limit)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, logs)
}
