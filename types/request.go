package types

type SearchRequest struct {
	Query     string `json:"query"`
	ProjectID string `json:"projectId"`
	Limit     int    `json:"limit,omitempty"`
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
