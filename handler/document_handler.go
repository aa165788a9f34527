package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insightdesk/insightdesk-be/service"
	"github.com/insightdesk/insightdesk-be/types"
)

type DocumentHandler struct {
	libraryService *service.LibraryService
}

func NewDocumentHandler(libraryService *service.LibraryService) *DocumentHandler {
	return &DocumentHandler{
		libraryService: libraryService,
	}
}

// HandleListDocuments lists the documents of one project. Clients poll this
// to observe pipeline status changes.
func (h *DocumentHandler) HandleListDocuments(c *gin.Context) {
	projectID := c.Param("id")
	docs, err := h.libraryService.ListDocuments(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	if docs == nil {
		docs = []types.Document{}
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true, Data: docs})
}

func (h *DocumentHandler) HandleGetDocument(c *gin.Context) {
	doc, err := h.libraryService.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Document not found"})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true, Data: doc})
}

func (h *DocumentHandler) HandleDeleteDocument(c *gin.Context) {
	if err := h.libraryService.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true})
}
