package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
)

// documentHandler handles HTTP requests related to billing documents and
// their approval workflow.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// RegisterDocumentRoutes registers routes related to documents.
func RegisterDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := &documentHandler{documentService: documentService}

	docs := rg.Group("/documents")
	{
		docs.POST("", h.create)
		docs.GET("", h.list)
		docs.GET("/:id", h.get)
		docs.PUT("/:id/performer", h.assignPerformer)
		docs.PUT("/:id/manager", h.assignManager)
		docs.POST("/:id/submit", h.transition(domain.ActionSubmit))
		docs.POST("/:id/approve-performer", h.transition(domain.ActionPerformerApprove))
		docs.POST("/:id/approve-manager", h.transition(domain.ActionManagerApprove))
		docs.POST("/:id/reject", h.transition(domain.ActionReject))
		docs.POST("/:id/finalize", h.transition(domain.ActionFinalize))
		docs.POST("/:id/share", h.share)
		docs.DELETE("/:id/share", h.revoke)
		docs.DELETE("/:id", h.delete)
	}
}

// create godoc
// @Summary Create a document from a work package
// @Description Derives a billing document of the given type from an assembled work package
// @Tags documents
// @Accept json
// @Produce json
// @Param document body dto.CreateDocumentRequest true "Document details"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown work package"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create document"
// @Security BearerAuth
// @Router /documents [post]
func (h *documentHandler) create(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create document",
		slog.String("work_package_id", req.WorkPackageID),
		slog.String("type", req.Type))

	doc, err := h.documentService.CreateFromWorkPackage(c.Request.Context(), caller.WorkspaceID, req, caller.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error creating document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidReference):
			logger.Warn("Unknown work package for document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Work package not found for document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create document", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		}
		return
	}

	logger.Info("Document created", slog.String("document_id", doc.DocumentID))
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// get godoc
// @Summary Get a document by ID
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to retrieve document"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *documentHandler) get(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.GetDocument(c.Request.Context(), caller.WorkspaceID, c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else {
			logger.Error("Failed to get document", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve document"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// list godoc
// @Summary List documents
// @Description Returns documents owned by the workspace plus documents shared into it by child workspaces
// @Tags documents
// @Produce json
// @Success 200 {array} dto.DocumentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list documents"
// @Security BearerAuth
// @Router /documents [get]
func (h *documentHandler) list(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	docs, err := h.documentService.ListDocuments(c.Request.Context(), caller.WorkspaceID)
	if err != nil {
		logger.Error("Failed to list documents", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponses(docs))
}

func (h *documentHandler) assignPerformer(c *gin.Context) {
	h.assign(c, h.documentService.AssignPerformer)
}

func (h *documentHandler) assignManager(c *gin.Context) {
	h.assign(c, h.documentService.AssignManager)
}

// assign resolves the assignee ref and delegates to the stage-specific
// service call.
func (h *documentHandler) assign(c *gin.Context, call func(ctx context.Context, workspaceID, documentID, ref string, caller domain.Caller) (*domain.DocumentRecord, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	documentID := c.Param("id")

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Assign", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("document_id", documentID), slog.String("ref", req.Ref))

	doc, err := call(c.Request.Context(), caller.WorkspaceID, documentID, req.Ref, caller)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Document not found for assignment")
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		case errors.Is(err, apperrors.ErrInvalidReference):
			logger.Warn("Assignee ref did not resolve")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee reference does not resolve to a known user"})
		case errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Caller not allowed to assign")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to assign", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignee"})
		}
		return
	}

	logger.Info("Assignee updated")
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// transition builds a handler applying one approval action.
func (h *documentHandler) transition(action domain.ApprovalAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		caller, ok := middleware.GetCallerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		documentID := c.Param("id")

		var req dto.TransitionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				logger.Warn("Failed to bind JSON for Transition", slog.String("error", err.Error()))
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
				return
			}
		}

		logger = logger.With(slog.String("document_id", documentID), slog.String("action", string(action)))
		logger.Info("Received approval action")

		doc, err := h.documentService.Transition(c.Request.Context(), caller.WorkspaceID, documentID, action, req.Message, caller)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				logger.Warn("Document not found for transition")
				c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			case errors.Is(err, apperrors.ErrInvalidTransition):
				logger.Warn("Transition not allowed from current status")
				c.JSON(http.StatusConflict, gin.H{"error": "Action is not allowed from the document's current status"})
			case errors.Is(err, apperrors.ErrForbidden):
				logger.Warn("Caller failed transition guard")
				c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			default:
				logger.Error("Failed to apply transition", slog.String("error", err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply action"})
			}
			return
		}

		logger.Info("Approval action applied", slog.String("status", string(doc.ApprovalStatus)))
		c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
	}
}

// share godoc
// @Summary Share a document with the parent workspace
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Workspace has no parent"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document not yet approved"
// @Failure 500 {object} map[string]string "Failed to share document"
// @Security BearerAuth
// @Router /documents/{id}/share [post]
func (h *documentHandler) share(c *gin.Context) {
	h.sharing(c, h.documentService.Share, "share")
}

// revoke godoc
// @Summary Revoke parent-workspace sharing
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to revoke sharing"
// @Security BearerAuth
// @Router /documents/{id}/share [delete]
func (h *documentHandler) revoke(c *gin.Context) {
	h.sharing(c, h.documentService.Revoke, "revoke")
}

func (h *documentHandler) sharing(c *gin.Context, call func(ctx context.Context, workspaceID, documentID string, caller domain.Caller) (*domain.DocumentRecord, error), verb string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	documentID := c.Param("id")
	logger = logger.With(slog.String("document_id", documentID))

	doc, err := call(c.Request.Context(), caller.WorkspaceID, documentID, caller)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Sharing change rejected", slog.String("verb", verb), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidTransition):
			logger.Warn("Sharing requires an approved document", slog.String("verb", verb))
			c.JSON(http.StatusConflict, gin.H{"error": "Document must be approved before it can be shared"})
		case errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Sharing change forbidden", slog.String("verb", verb))
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to change sharing", slog.String("verb", verb), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sharing"})
		}
		return
	}

	logger.Info("Sharing updated", slog.String("verb", verb))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// delete godoc
// @Summary Delete a document
// @Description Removes the document and releases its work package back into the ledger
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to delete document"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *documentHandler) delete(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	documentID := c.Param("id")
	logger = logger.With(slog.String("document_id", documentID))

	if err := h.documentService.Delete(c.Request.Context(), caller.WorkspaceID, documentID, caller); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to delete document", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		}
		return
	}

	logger.Info("Document deleted")
	c.Status(http.StatusNoContent)
}
