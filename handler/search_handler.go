package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insightdesk/insightdesk-be/service"
	"github.com/insightdesk/insightdesk-be/types"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// HandleSearch answers a similarity query over a project's ready documents.
// An empty result set is a success response with count 0.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Query == "" || req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Missing required fields: query, projectId",
		})
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), req.Query, req.ProjectID, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}

	if results == nil {
		results = []types.RAGContext{}
	}
	c.JSON(http.StatusOK, types.SearchResponse{
		Success: true,
		Results: results,
		Count:   len(results),
	})
}
