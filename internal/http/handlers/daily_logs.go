package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/services"
	"github.com/yungbote/sprout-backend/internal/types"
)

const (
	defaultChildID  = "Yumi"
	defaultLogLimit = 20
	maxLogLimit     = 100
	maxRawTextLen   = 5000
)

type DailyLogHandler struct {
	dailyLogService services.DailyLogService
}

func NewDailyLogHandler(dailyLogService services.DailyLogService) *DailyLogHandler {
	return &DailyLogHandler{dailyLogService: dailyLogService}
}

func childIDOrDefault(v string) string {
	if strings.TrimSpace(v) == "" {
		return defaultChildID
	}
	return v
}

// GET /api/v1/daily-logs
func (dh *DailyLogHandler) List(c *gin.Context) {
	childID := childIDOrDefault(c.Query("childId"))

	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLogLimit {
			response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
				fmt.Errorf("limit must be an integer between 1 and %d", maxLogLimit))
			return
		}
		limit = parsed
	}

	status := middleware.AuthStatus(c)
	result, err := dh.dailyLogService.List(c.Request.Context(), childID, limit, c.Query("cursor"), status.IsDemo)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.RespondOKWithMeta(c, result.Items, response.Meta{NextCursor: result.NextCursor})
}

// POST /api/v1/daily-logs
func (dh *DailyLogHandler) Create(c *gin.Context) {
	var req struct {
		ChildID       string               `json:"childId"`
		RawText       string               `json:"rawText"`
		PlanReference *types.PlanReference `json:"planReference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if strings.TrimSpace(req.RawText) == "" || len(req.RawText) > maxRawTextLen {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("rawText must be 1 to %d characters", maxRawTextLen))
		return
	}

	status := middleware.AuthStatus(c)
	result, err := dh.dailyLogService.Create(c.Request.Context(), childIDOrDefault(req.ChildID), req.RawText, req.PlanReference, !status.IsAuthenticated)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.RespondCreated(c, result)
}

// PATCH /api/v1/daily-logs accepts reviewed profile candidates.
func (dh *DailyLogHandler) AcceptCandidates(c *gin.Context) {
	var req struct {
		ChildID       string   `json:"childId"`
		StorageKey    string   `json:"storageKey"`
		Milestones    []string `json:"milestones"`
		ActiveSchemas []string `json:"activeSchemas"`
		Interests     []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if req.StorageKey == "" {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("storageKey is required"))
		return
	}

	status := middleware.AuthStatus(c)
	result, err := dh.dailyLogService.AcceptCandidates(c.Request.Context(), services.AcceptCandidatesInput{
		ChildID:       childIDOrDefault(req.ChildID),
		StorageKey:    req.StorageKey,
		Milestones:    req.Milestones,
		ActiveSchemas: req.ActiveSchemas,
		Interests:     req.Interests,
		Demo:          !status.IsAuthenticated,
	})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.RespondOK(c, result)
}

// PUT /api/v1/daily-logs replaces the note text of an existing entry.
func (dh *DailyLogHandler) UpdateNote(c *gin.Context) {
	var req struct {
		ChildID    string `json:"childId"`
		StorageKey string `json:"storageKey"`
		RawText    string `json:"rawText"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if req.StorageKey == "" || strings.TrimSpace(req.RawText) == "" || len(req.RawText) > maxRawTextLen {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("storageKey and rawText (1 to %d characters) are required", maxRawTextLen))
		return
	}

	status := middleware.AuthStatus(c)
	if err := dh.dailyLogService.UpdateNote(c.Request.Context(), childIDOrDefault(req.ChildID), req.StorageKey, req.RawText, !status.IsAuthenticated); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// DELETE /api/v1/daily-logs
func (dh *DailyLogHandler) Delete(c *gin.Context) {
	var req struct {
		ChildID    string `json:"childId"`
		StorageKey string `json:"storageKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if req.StorageKey == "" {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Errorf("storageKey is required"))
		return
	}

	status := middleware.AuthStatus(c)
	if err := dh.dailyLogService.Delete(c.Request.Context(), childIDOrDefault(req.ChildID), req.StorageKey, !status.IsAuthenticated); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
