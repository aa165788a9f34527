package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/insightdesk/insightdesk-be/types"
	"github.com/pgvector/pgvector-go"
)

type fakeDocStore struct {
	mu              sync.Mutex
	docs            map[string]*types.Document
	order           []string
	history         map[string][]string
	failGet         bool
	failStoragePath bool
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:    make(map[string]*types.Document),
		history: make(map[string][]string),
	}
}

func (s *fakeDocStore) CreateDocument(ctx context.Context, doc *types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = uuid.New().String()
	copied := *doc
	s.docs[doc.ID] = &copied
	s.order = append(s.order, doc.ID)
	s.history[doc.ID] = append(s.history[doc.ID], doc.Status)
	return nil
}

func (s *fakeDocStore) statusHistory(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history[id]))
	copy(out, s.history[id])
	return out
}

func (s *fakeDocStore) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, fmt.Errorf("lookup failed")
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeDocStore) ListDocuments(ctx context.Context, projectID string) ([]types.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []types.Document
	for _, id := range s.order {
		if doc, ok := s.docs[id]; ok && doc.ProjectID == projectID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (s *fakeDocStore) ListReadyDocumentIDs(ctx context.Context, projectID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, id := range s.order {
		if doc, ok := s.docs[id]; ok && doc.ProjectID == projectID && doc.Status == types.DocumentStatusReady {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeDocStore) UpdateDocumentStatus(ctx context.Context, id, status, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("document not found")
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	s.history[id] = append(s.history[id], status)
	return nil
}

func (s *fakeDocStore) UpdateDocumentStoragePath(ctx context.Context, id, filePath, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failStoragePath {
		return fmt.Errorf("record update failed")
	}
	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("document not found")
	}
	doc.FilePath = filePath
	doc.Status = status
	s.history[id] = append(s.history[id], status)
	return nil
}

func (s *fakeDocStore) UpdateDocumentPreview(ctx context.Context, id, preview string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("document not found")
	}
	doc.ContentText = preview
	return nil
}

func (s *fakeDocStore) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

type fakeChunkStore struct {
	mu           sync.Mutex
	insertCalls  [][]types.DocumentChunk
	chunks       []types.DocumentChunk
	hasMatch     bool
	matchResult  []types.MatchedChunk
	matchCalled  bool
	insertErrAt  int // fail the insert call with this 1-based ordinal, 0 = never
	insertCalled int
}

func (s *fakeChunkStore) InsertChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalled++
	if s.insertErrAt > 0 && s.insertCalled == s.insertErrAt {
		return fmt.Errorf("insert failed")
	}
	batch := make([]types.DocumentChunk, len(chunks))
	copy(batch, chunks)
	s.insertCalls = append(s.insertCalls, batch)
	s.chunks = append(s.chunks, batch...)
	return nil
}

func (s *fakeChunkStore) ListChunksByDocumentIDs(ctx context.Context, documentIDs []string) ([]types.DocumentChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = true
	}
	var out []types.DocumentChunk
	for _, chunk := range s.chunks {
		if wanted[chunk.DocumentID] {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (s *fakeChunkStore) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []types.DocumentChunk
	for _, chunk := range s.chunks {
		if chunk.DocumentID != documentID {
			kept = append(kept, chunk)
		}
	}
	s.chunks = kept
	return nil
}

func (s *fakeChunkStore) MatchChunks(ctx context.Context, embedding pgvector.Vector, projectID string, threshold float64, limit int) ([]types.MatchedChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matchCalled = true
	return s.matchResult, nil
}

func (s *fakeChunkStore) HasMatchFunction(ctx context.Context) bool {
	return s.hasMatch
}

type fakeProjectStore struct {
	mu       sync.Mutex
	projects map[string]*types.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[string]*types.Project)}
}

func (s *fakeProjectStore) CreateProject(ctx context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	project.ID = uuid.New().String()
	copied := *project
	s.projects[project.ID] = &copied
	return nil
}

func (s *fakeProjectStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	copied := *project
	return &copied, nil
}

func (s *fakeProjectStore) ListProjects(ctx context.Context, companyID string) ([]types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var projects []types.Project
	for _, p := range s.projects {
		if p.CompanyID == companyID {
			projects = append(projects, *p)
		}
	}
	return projects, nil
}

func (s *fakeProjectStore) UpdateProject(ctx context.Context, id string, name, description string) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	if name != "" {
		project.Name = name
	}
	if description != "" {
		project.Description = description
	}
	copied := *project
	return &copied, nil
}

func (s *fakeProjectStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return fmt.Errorf("storage unavailable")
	}
	if _, exists := s.objects[key]; exists {
		return fmt.Errorf("object already exists at %s", key)
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found")
	}
	return data, nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) DeletePrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.objects, key)
		}
	}
	return nil
}

// fakeEmbedder derives a deterministic vector from each text so order can be
// asserted. It satisfies both BatchEmbedder and QueryEmbedder.
type fakeEmbedder struct {
	vectors     map[string][]float32
	shortCount  bool
	fail        bool
	batchSizes  []int
	singleCalls []string
}

func (e *fakeEmbedder) vectorFor(text string) []float32 {
	if v, ok := e.vectors[text]; ok {
		return v
	}
	return []float32{float32(len(text)), 1, 0}
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedding unavailable")
	}
	e.batchSizes = append(e.batchSizes, len(texts))
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, e.vectorFor(text))
	}
	if e.shortCount && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedding unavailable")
	}
	e.singleCalls = append(e.singleCalls, text)
	return e.vectorFor(text), nil
}
