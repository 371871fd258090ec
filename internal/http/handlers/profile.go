package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/services"
	"github.com/yungbote/sprout-backend/internal/types"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GET /api/v1/profile
func (ph *ProfileHandler) Get(c *gin.Context) {
	childID := childIDOrDefault(c.Query("childId"))
	status := middleware.AuthStatus(c)

	profile, err := ph.profileService.Get(c.Request.Context(), childID, status.IsDemo)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	if profile == nil {
		response.RespondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("profile not found"))
		return
	}
	response.RespondOK(c, profile)
}

// PATCH /api/v1/profile merges values into the profile lists. Admin only;
// demo sessions cannot edit the profile directly.
func (ph *ProfileHandler) Merge(c *gin.Context) {
	var req struct {
		ChildID       string   `json:"childId"`
		Milestones    []string `json:"milestones"`
		ActiveSchemas []string `json:"activeSchemas"`
		Interests     []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	profile, err := ph.profileService.MergeCandidates(c.Request.Context(), services.MergeProfileInput{
		ChildID:       childIDOrDefault(req.ChildID),
		Milestones:    req.Milestones,
		ActiveSchemas: req.ActiveSchemas,
		Interests:     req.Interests,
	})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.RespondOK(c, profile)
}

// DELETE /api/v1/profile removes a single value from one list field.
func (ph *ProfileHandler) RemoveValue(c *gin.Context) {
	var req struct {
		ChildID string `json:"childId"`
		Field   string `json:"field"`
		Value   string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	field := types.ProfileField(req.Field)
	if !field.Valid() || req.Value == "" {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("field must be one of milestones, activeSchemas, interests and value is required"))
		return
	}

	profile, err := ph.profileService.RemoveValue(c.Request.Context(), childIDOrDefault(req.ChildID), field, req.Value, false)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.RespondOK(c, profile)
}
