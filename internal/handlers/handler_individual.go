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

// individualHandler handles HTTP requests related to the performer directory.
type individualHandler struct {
	reconcilerService portssvc.ReconcilerSvcFacade
}

// registerIndividualRoutes registers routes related to individuals.
func registerIndividualRoutes(rg *gin.RouterGroup, reconcilerService portssvc.ReconcilerSvcFacade) {
	h := &individualHandler{reconcilerService: reconcilerService}

	individuals := rg.Group("/individuals")
	{
		individuals.GET("", h.list)
		individuals.GET("/:id", h.get)
		individuals.PUT("/:id", h.update)
	}
}

// list godoc
// @Summary List the performer directory
// @Description Runs the duplicate reconciler over the workspace directory and returns the deduplicated result. The directory is reconciled on every load so repeated calls converge to the same canonical set.
// @Tags individuals
// @Produce json
// @Success 200 {array} dto.IndividualResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list individuals"
// @Security BearerAuth
// @Router /individuals [get]
func (h *individualHandler) list(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	individuals, err := h.reconcilerService.Reconcile(c.Request.Context(), caller.WorkspaceID, caller.UserID)
	if err != nil {
		logger.Error("Failed to reconcile performer directory", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list individuals"})
		return
	}

	c.JSON(http.StatusOK, dto.ToIndividualResponses(individuals))
}

// get godoc
// @Summary Get a performer record by ID
// @Tags individuals
// @Produce json
// @Param id path string true "Individual ID"
// @Success 200 {object} dto.IndividualResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Individual not found"
// @Failure 500 {object} map[string]string "Failed to retrieve individual"
// @Security BearerAuth
// @Router /individuals/{id} [get]
func (h *individualHandler) get(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ind, err := h.reconcilerService.GetIndividual(c.Request.Context(), caller.WorkspaceID, c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Individual not found"})
		} else {
			logger.Error("Failed to get individual", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve individual"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToIndividualResponse(ind))
}

// update godoc
// @Summary Update a performer record
// @Description Patches identity fields; completeness status is recomputed server-side
// @Tags individuals
// @Accept json
// @Produce json
// @Param id path string true "Individual ID"
// @Param individual body dto.UpdateIndividualRequest true "Fields to update"
// @Success 200 {object} dto.IndividualResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Individual not found"
// @Failure 500 {object} map[string]string "Failed to update individual"
// @Security BearerAuth
// @Router /individuals/{id} [put]
func (h *individualHandler) update(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateIndividualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateIndividual", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ind, err := h.reconcilerService.UpdateIndividual(c.Request.Context(), caller.WorkspaceID, c.Param("id"), req, caller.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Individual not found"})
		default:
			logger.Error("Failed to update individual", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update individual"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToIndividualResponse(ind))
}
