package types

type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadedDocument is the accepted-upload projection returned to the caller
// while the rest of ingestion continues in the background.
type UploadedDocument struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type UploadResponse struct {
	Success  bool             `json:"success"`
	Document UploadedDocument `json:"document"`
}

type SearchResponse struct {
	Success bool         `json:"success"`
	Results []RAGContext `json:"results"`
	Count   int          `json:"count"`
}

type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}
