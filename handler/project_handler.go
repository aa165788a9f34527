package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insightdesk/insightdesk-be/middleware"
	"github.com/insightdesk/insightdesk-be/service"
	"github.com/insightdesk/insightdesk-be/types"
)

type ProjectHandler struct {
	libraryService *service.LibraryService
}

func NewProjectHandler(libraryService *service.LibraryService) *ProjectHandler {
	return &ProjectHandler{
		libraryService: libraryService,
	}
}

func (h *ProjectHandler) HandleCreateProject(c *gin.Context) {
	var req types.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Missing required field: name"})
		return
	}

	project, err := h.libraryService.CreateProject(c.Request.Context(), middleware.CompanyID(c), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true, Data: project})
}

func (h *ProjectHandler) HandleListProjects(c *gin.Context) {
	projects, err := h.libraryService.ListProjects(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	if projects == nil {
		projects = []types.Project{}
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true, Data: projects})
}

func (h *ProjectHandler) HandleGetProject(c *gin.Context) {
	project, err := h.libraryService.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Project not found"})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true, Data: project})
}

func (h *ProjectHandler) HandleUpdateProject(c *gin.Context) {
	var req types.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}

	project, err := h.libraryService.UpdateProject(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true, Data: project})
}

// HandleDeleteProject is destructive for all contained documents, chunks and
// stored files.
func (h *ProjectHandler) HandleDeleteProject(c *gin.Context) {
	if err := h.libraryService.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Success: true})
}
