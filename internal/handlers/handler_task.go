package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
)

// taskHandler handles HTTP requests related to the task ledger.
type taskHandler struct {
	taskService portssvc.TaskSvcFacade
	taskSource  portssvc.TaskSource
}

// registerTaskRoutes registers routes related to tasks. taskSource may be nil
// when no tracker is configured; the sync route is then not exposed.
func registerTaskRoutes(rg *gin.RouterGroup, taskService portssvc.TaskSvcFacade, taskSource portssvc.TaskSource) {
	h := &taskHandler{taskService: taskService, taskSource: taskSource}

	tasks := rg.Group("/tasks")
	{
		tasks.POST("/import", h.importTasks)
		tasks.GET("/eligible", h.listEligible)
		tasks.PATCH("/:id/force-include", h.setForceInclude)
		if taskSource != nil {
			tasks.POST("/sync", h.syncFromTracker)
		}
	}
}

// syncFromTracker godoc
// @Summary Sync tasks from the configured tracker
// @Description Fetches the tracker issues for a billing period and upserts them into the ledger
// @Tags tasks
// @Produce json
// @Param period query string true "Billing period, e.g. 2026-07"
// @Success 200 {array} dto.TaskResponse
// @Failure 400 {object} map[string]string "Missing period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Tracker unavailable"
// @Failure 500 {object} map[string]string "Failed to sync tasks"
// @Security BearerAuth
// @Router /tasks/sync [post]
func (h *taskHandler) syncFromTracker(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	period := c.Query("period")
	if period == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period query parameter is required"})
		return
	}

	logger = logger.With(slog.String("period", period))
	logger.Info("Syncing tasks from tracker")

	reqs, err := h.taskSource.FetchTasks(c.Request.Context(), period)
	if err != nil {
		logger.Error("Failed to fetch tasks from tracker", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Tracker is unavailable"})
		return
	}

	tasks, err := h.taskService.UpsertImported(c.Request.Context(), caller.WorkspaceID, reqs, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error syncing tasks", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to upsert synced tasks", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync tasks"})
		}
		return
	}

	logger.Info("Tasks synced from tracker", slog.Int("count", len(tasks)))
	c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

// importTasks godoc
// @Summary Import tasks from a tracker
// @Description Applies a normalized batch of tracker tasks, deduplicated by project key and task key
// @Tags tasks
// @Accept json
// @Produce json
// @Param batch body dto.ImportTasksRequest true "Task batch"
// @Success 200 {array} dto.TaskResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to import tasks"
// @Security BearerAuth
// @Router /tasks/import [post]
func (h *taskHandler) importTasks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ImportTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportTasks", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received task import batch", slog.Int("count", len(req.Tasks)))

	tasks, err := h.taskService.UpsertImported(c.Request.Context(), caller.WorkspaceID, req.Tasks, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error importing tasks", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to import tasks", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import tasks"})
		}
		return
	}

	logger.Info("Tasks imported", slog.Int("count", len(tasks)))
	c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

// listEligible godoc
// @Summary List eligible tasks
// @Description Returns unlocked tasks with billable hours, ready for assembly
// @Tags tasks
// @Produce json
// @Param projectKey query string false "Filter by project key"
// @Param status query string false "Filter by status"
// @Param period query string false "Filter by billing period"
// @Param billableOnly query bool false "Exclude force-included tasks"
// @Success 200 {array} dto.TaskResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list tasks"
// @Security BearerAuth
// @Router /tasks/eligible [get]
func (h *taskHandler) listEligible(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListEligibleTasksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEligible", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	tasks, err := h.taskService.ListEligible(c.Request.Context(), caller.WorkspaceID, params.ToTaskFilters())
	if err != nil {
		logger.Error("Failed to list eligible tasks", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

// setForceInclude godoc
// @Summary Toggle the force-include override
// @Description Pulls a non-billable task into the eligible pool, or drops it back out
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param override body dto.SetForceIncludeRequest true "Override value"
// @Success 200 {object} dto.TaskResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 500 {object} map[string]string "Failed to update task"
// @Security BearerAuth
// @Router /tasks/{id}/force-include [patch]
func (h *taskHandler) setForceInclude(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	taskID := c.Param("id")

	var req dto.SetForceIncludeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetForceInclude", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("task_id", taskID))

	task, err := h.taskService.SetForceInclude(c.Request.Context(), caller.WorkspaceID, taskID, req.Value, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Task not found for force-include")
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			logger.Error("Failed to set force-include", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		}
		return
	}

	logger.Info("Force-include updated", slog.Bool("value", req.Value))
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}
