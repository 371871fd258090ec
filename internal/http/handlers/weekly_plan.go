package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/services"
)

type WeeklyPlanHandler struct {
	weeklyPlanService services.WeeklyPlanService
}

func NewWeeklyPlanHandler(weeklyPlanService services.WeeklyPlanService) *WeeklyPlanHandler {
	return &WeeklyPlanHandler{weeklyPlanService: weeklyPlanService}
}

// GET /api/v1/weekly-plan
func (wh *WeeklyPlanHandler) Get(c *gin.Context) {
	childID := childIDOrDefault(c.Query("childId"))
	status := middleware.AuthStatus(c)

	payload, err := wh.weeklyPlanService.Get(c.Request.Context(), childID, c.Query("objectKey"), status.IsDemo)
	if err != nil {
		response.RespondFromError(c, err, "INTERNAL_ERROR")
		return
	}
	response.RespondOK(c, payload)
}

// POST /api/v1/weekly-plan starts asynchronous plan generation. Admin only.
func (wh *WeeklyPlanHandler) Generate(c *gin.Context) {
	var req struct {
		Action  string `json:"action"`
		ChildID string `json:"childId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if req.Action != "generate" {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("action must be %q", "generate"))
		return
	}

	job, err := wh.weeklyPlanService.StartGeneration(c.Request.Context(), childIDOrDefault(req.ChildID), false)
	if err != nil {
		response.RespondFromError(c, err, "INTERNAL_ERROR")
		return
	}
	response.RespondOK(c, job)
}

// PATCH /api/v1/weekly-plan reconciles the job record against outputs.
func (wh *WeeklyPlanHandler) SyncJobStatus(c *gin.Context) {
	var req struct {
		Action  string `json:"action"`
		ChildID string `json:"childId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if req.Action != "sync-job-status" {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("action must be %q", "sync-job-status"))
		return
	}

	status := middleware.AuthStatus(c)
	job, err := wh.weeklyPlanService.SyncJobStatus(c.Request.Context(), childIDOrDefault(req.ChildID), status.IsDemo)
	if err != nil {
		response.RespondFromError(c, err, "INTERNAL_ERROR")
		return
	}
	response.RespondOK(c, job)
}

// DELETE /api/v1/weekly-plan removes one plan output. Admin only.
func (wh *WeeklyPlanHandler) Delete(c *gin.Context) {
	var req struct {
		ChildID   string `json:"childId"`
		ObjectKey string `json:"objectKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if req.ObjectKey == "" {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("objectKey is required"))
		return
	}

	if err := wh.weeklyPlanService.DeleteOutput(c.Request.Context(), childIDOrDefault(req.ChildID), req.ObjectKey, false); err != nil {
		response.RespondFromError(c, err, "INTERNAL_ERROR")
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
