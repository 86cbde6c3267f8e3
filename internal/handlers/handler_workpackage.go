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

// workPackageHandler handles HTTP requests related to work packages.
type workPackageHandler struct {
	workPackageService portssvc.WorkPackageSvcFacade
}

// RegisterWorkPackageRoutes registers routes related to work packages.
func RegisterWorkPackageRoutes(rg *gin.RouterGroup, workPackageService portssvc.WorkPackageSvcFacade) {
	h := &workPackageHandler{workPackageService: workPackageService}

	packages := rg.Group("/work-packages")
	{
		packages.POST("", h.assemble)
		packages.GET("", h.list)
		packages.GET("/:id", h.get)
		packages.PATCH("/:id/metadata", h.updateMetadata)
		packages.POST("/:id/release", h.release)
	}
}

// assemble godoc
// @Summary Assemble a work package
// @Description Locks the selected tasks into a new immutable costed package
// @Tags work-packages
// @Accept json
// @Produce json
// @Param package body dto.AssembleWorkPackageRequest true "Assembly parameters"
// @Success 201 {object} dto.WorkPackageResponse
// @Failure 400 {object} map[string]string "Invalid input, unknown contract or missing tasks"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "One or more tasks already locked"
// @Failure 500 {object} map[string]string "Failed to assemble work package"
// @Security BearerAuth
// @Router /work-packages [post]
func (h *workPackageHandler) assemble(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.AssembleWorkPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Assemble", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to assemble work package",
		slog.String("contract_id", req.ContractID),
		slog.Int("task_count", len(req.TaskIDs)))

	pkg, err := h.workPackageService.Assemble(c.Request.Context(), caller.WorkspaceID, req, caller.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error assembling work package", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidReference):
			logger.Warn("Unresolvable reference assembling work package", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Missing task or contract assembling work package", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Task lock conflict assembling work package")
			c.JSON(http.StatusConflict, gin.H{"error": "One or more tasks are already part of another work package"})
		default:
			logger.Error("Failed to assemble work package", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assemble work package"})
		}
		return
	}

	logger.Info("Work package assembled", slog.String("work_package_id", pkg.WorkPackageID))
	c.JSON(http.StatusCreated, dto.ToWorkPackageResponse(pkg))
}

// get godoc
// @Summary Get a work package by ID
// @Tags work-packages
// @Produce json
// @Param id path string true "Work package ID"
// @Success 200 {object} dto.WorkPackageResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Work package not found"
// @Failure 500 {object} map[string]string "Failed to retrieve work package"
// @Security BearerAuth
// @Router /work-packages/{id} [get]
func (h *workPackageHandler) get(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pkg, err := h.workPackageService.GetWorkPackage(c.Request.Context(), caller.WorkspaceID, c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Work package not found"})
		} else {
			logger.Error("Failed to get work package", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve work package"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkPackageResponse(pkg))
}

// list godoc
// @Summary List work packages
// @Tags work-packages
// @Produce json
// @Success 200 {array} dto.WorkPackageResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list work packages"
// @Security BearerAuth
// @Router /work-packages [get]
func (h *workPackageHandler) list(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pkgs, err := h.workPackageService.ListWorkPackages(c.Request.Context(), caller.WorkspaceID)
	if err != nil {
		logger.Error("Failed to list work packages", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list work packages"})
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkPackageResponses(pkgs))
}

// updateMetadata godoc
// @Summary Update work package metadata
// @Description Updates tags and categorization; financial fields and snapshots are immutable
// @Tags work-packages
// @Accept json
// @Produce json
// @Param id path string true "Work package ID"
// @Param metadata body dto.UpdatePackageMetadataRequest true "Metadata fields to update"
// @Success 200 {object} dto.WorkPackageResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Work package not found"
// @Failure 500 {object} map[string]string "Failed to update work package"
// @Security BearerAuth
// @Router /work-packages/{id}/metadata [patch]
func (h *workPackageHandler) updateMetadata(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdatePackageMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateMetadata", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	pkg, err := h.workPackageService.UpdateMetadata(c.Request.Context(), caller.WorkspaceID, c.Param("id"), req, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Work package not found"})
		} else {
			logger.Error("Failed to update work package metadata", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update work package"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkPackageResponse(pkg))
}

// release godoc
// @Summary Release a work package
// @Description Unlocks the package's tasks back into the ledger and removes the package. Idempotent.
// @Tags work-packages
// @Produce json
// @Param id path string true "Work package ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Work package not found"
// @Failure 500 {object} map[string]string "Failed to release work package"
// @Security BearerAuth
// @Router /work-packages/{id}/release [post]
func (h *workPackageHandler) release(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	workPackageID := c.Param("id")

	logger = logger.With(slog.String("work_package_id", workPackageID))
	logger.Info("Received request to release work package")

	if err := h.workPackageService.Release(c.Request.Context(), caller.WorkspaceID, workPackageID, caller.UserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Work package not found"})
		} else {
			logger.Error("Failed to release work package", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release work package"})
		}
		return
	}

	logger.Info("Work package released")
	c.Status(http.StatusNoContent)
}
