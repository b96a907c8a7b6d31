package httpapi

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"

	"ragchat/internal/domain"
	"ragchat/internal/port"
	"ragchat/internal/usecase"
)

// Server exposes the knowledge base and the generation backend as a JSON
// HTTP API. Route and field names follow the reference backend so any
// conforming client can drive it.
type Server struct {
	kb           *usecase.KnowledgeBase
	gen          port.Generator
	assembler    *usecase.PromptAssembler
	defaultModel string
	logger       *log.Logger
}

func NewServer(kb *usecase.KnowledgeBase, gen port.Generator, defaultModel string, logger *log.Logger) *Server {
	return &Server{
		kb:           kb,
		gen:          gen,
		assembler:    usecase.NewPromptAssembler(0),
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Post("/search", s.handleSearch)
	r.Post("/add", s.handleAdd)
	r.Post("/batch_add", s.handleBatchAdd)
	r.Get("/info", s.handleInfo)

	r.Post("/generate", s.handleGenerate)
	r.Post("/chat", s.handleChat)
	r.Get("/models", s.handleModels)

	r.Post("/rag", s.handleRAG)

	return r
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchTiming struct {
	Total         float64 `json:"total"`
	Vectorization float64 `json:"vectorization"`
	Search        float64 `json:"search"`
}

type searchResponse struct {
	Documents []string     `json:"documents"`
	Count     int          `json:"count"`
	Query     string       `json:"query"`
	Timing    searchTiming `json:"timing"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TopK < 1 {
		req.TopK = 3
	}

	docs, timing, err := s.kb.Retrieve(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.logger.Error("search failed", "query", req.Query, "error", err)
		s.error(w, http.StatusInternalServerError, "search error: "+err.Error())
		return
	}
	if docs == nil {
		docs = []string{}
	}

	s.logger.Info("search", "query", req.Query, "found", len(docs))
	s.json(w, http.StatusOK, searchResponse{
		Documents: docs,
		Count:     len(docs),
		Query:     req.Query,
		Timing: searchTiming{
			Total:         seconds(timing.Total),
			Vectorization: seconds(timing.Embed),
			Search:        seconds(timing.Search),
		},
	})
}

type addRequest struct {
	Text     string                 `json:"text"`
	Metadata *domain.RecordMetadata `json:"metadata"`
}

type addResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DocID      string `json:"doc_id,omitempty"`
	TextLength int    `json:"text_length,omitempty"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.error(w, http.StatusBadRequest, "text is required")
		return
	}

	meta := domain.RecordMetadata{Source: domain.SourceManual, Type: "fact"}
	if req.Metadata != nil {
		meta = *req.Metadata
	}

	id, err := s.kb.Remember(r.Context(), req.Text, meta)
	if err != nil {
		s.logger.Error("add failed", "error", err)
		s.error(w, http.StatusInternalServerError, "add error: "+err.Error())
		return
	}

	s.logger.Info("document added", "id", id, "length", len(req.Text))
	s.json(w, http.StatusOK, addResponse{
		Success:    true,
		Message:    "document stored",
		DocID:      id,
		TextLength: len(req.Text),
	})
}

type batchAddResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (s *Server) handleBatchAdd(w http.ResponseWriter, r *http.Request) {
	var reqs []addRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	texts := make([]string, 0, len(reqs))
	metas := make([]domain.RecordMetadata, 0, len(reqs))
	for _, req := range reqs {
		if req.Text == "" {
			continue
		}
		meta := domain.RecordMetadata{Source: domain.SourceManual, Type: "fact"}
		if req.Metadata != nil {
			meta = *req.Metadata
		}
		texts = append(texts, req.Text)
		metas = append(metas, meta)
	}

	if _, err := s.kb.RememberBatch(r.Context(), texts, metas); err != nil {
		s.logger.Error("batch add failed", "error", err)
		s.error(w, http.StatusInternalServerError, "batch add error: "+err.Error())
		return
	}

	s.json(w, http.StatusOK, batchAddResponse{
		Success: true,
		Message: "documents stored",
		Count:   len(texts),
	})
}

type infoResponse struct {
	DocumentCount  int    `json:"document_count"`
	CollectionName string `json:"collection_name"`
	Status         string `json:"status"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	count, err := s.kb.Count()
	if err != nil {
		s.error(w, http.StatusInternalServerError, "info error: "+err.Error())
		return
	}
	s.json(w, http.StatusOK, infoResponse{
		DocumentCount:  count,
		CollectionName: "rag_memory",
		Status:         "active",
	})
}

type generateAPIRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options,omitempty"`
}

type generateAPIResponse struct {
	Response       string  `json:"response"`
	Model          string  `json:"model"`
	PromptLength   int     `json:"prompt_length"`
	GenerationTime float64 `json:"generation_time"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}

	if !s.modelAvailable(r, req.Model) {
		s.error(w, http.StatusBadRequest, "model "+req.Model+" is not available")
		return
	}

	start := time.Now()
	text, err := s.gen.Generate(r.Context(), req.Model, req.Prompt, req.Options)
	if err != nil {
		s.logger.Error("generation failed", "model", req.Model, "error", err)
		s.error(w, http.StatusInternalServerError, "generation error: "+err.Error())
		return
	}

	s.logger.Info("generated", "model", req.Model, "took", time.Since(start))
	s.json(w, http.StatusOK, generateAPIResponse{
		Response:       text,
		Model:          req.Model,
		PromptLength:   len(req.Prompt),
		GenerationTime: seconds(time.Since(start)),
	})
}

type chatAPIRequest struct {
	Model    string        `json:"model"`
	Messages []domain.Turn `json:"messages"`
}

type chatAPIResponse struct {
	Message  domain.Turn `json:"message"`
	Model    string      `json:"model"`
	ChatTime float64     `json:"chat_time"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}

	if !s.modelAvailable(r, req.Model) {
		s.error(w, http.StatusBadRequest, "model "+req.Model+" is not available")
		return
	}

	start := time.Now()
	reply, err := s.gen.Chat(r.Context(), req.Model, req.Messages)
	if err != nil {
		s.logger.Error("chat failed", "model", req.Model, "error", err)
		s.error(w, http.StatusInternalServerError, "chat error: "+err.Error())
		return
	}

	s.json(w, http.StatusOK, chatAPIResponse{
		Message:  domain.Turn{Role: domain.RoleAssistant, Text: reply},
		Model:    req.Model,
		ChatTime: seconds(time.Since(start)),
	})
}

type modelsResponse struct {
	Models []string `json:"models"`
	Count  int      `json:"count"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.gen.ListModels(r.Context())
	if err != nil {
		s.logger.Error("listing models failed", "error", err)
		s.json(w, http.StatusOK, modelsResponse{Models: []string{}, Count: 0})
		return
	}
	s.json(w, http.StatusOK, modelsResponse{Models: models, Count: len(models)})
}

type ragRequest struct {
	Query string `json:"query"`
	Model string `json:"model"`
	TopK  int    `json:"top_k"`
}

type ragTiming struct {
	Total      float64 `json:"total"`
	Search     float64 `json:"search"`
	Generation float64 `json:"generation"`
}

type ragResponse struct {
	Answer         string    `json:"answer"`
	DocumentsFound int       `json:"documents_found"`
	Model          string    `json:"model"`
	Query          string    `json:"query"`
	Timing         ragTiming `json:"timing"`
}

// handleRAG runs the whole retrieval-augmented pipeline server-side:
// search, prompt assembly, generation. Stateless; no dialog history.
func (s *Server) handleRAG(w http.ResponseWriter, r *http.Request) {
	var req ragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}
	if req.TopK < 1 {
		req.TopK = 3
	}

	if !s.modelAvailable(r, req.Model) {
		s.error(w, http.StatusBadRequest, "model "+req.Model+" is not available")
		return
	}

	start := time.Now()
	docs, retTiming, err := s.kb.Retrieve(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.logger.Warn("rag retrieval failed, continuing without context", "error", err)
		docs = nil
	}

	prompt := s.assembler.Assemble(req.Query, docs, nil)

	genStart := time.Now()
	answer, err := s.gen.Generate(r.Context(), req.Model, prompt, nil)
	if err != nil {
		s.logger.Error("rag generation failed", "model", req.Model, "error", err)
		s.error(w, http.StatusInternalServerError, "rag error: "+err.Error())
		return
	}

	s.logger.Info("rag answered",
		"query", req.Query,
		"documents", len(docs),
		"took", time.Since(start))

	s.json(w, http.StatusOK, ragResponse{
		Answer:         answer,
		DocumentsFound: len(docs),
		Model:          req.Model,
		Query:          req.Query,
		Timing: ragTiming{
			Total:      seconds(time.Since(start)),
			Search:     seconds(retTiming.Total),
			Generation: seconds(time.Since(genStart)),
		},
	})
}

type healthResponse struct {
	Status          string            `json:"status"`
	Services        map[string]string `json:"services"`
	ModelsAvailable int               `json:"models_available"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, _ := usecase.NewBackendHealth(s.kb, s.gen).Health(r.Context())
	s.json(w, http.StatusOK, healthResponse{
		Status:          health.Status,
		Services:        health.Services,
		ModelsAvailable: health.ModelsAvailable,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, map[string]any{
		"message":  "ragchat backend is running",
		"services": []string{"vector_db", "llm_models"},
	})
}

func (s *Server) modelAvailable(r *http.Request, model string) bool {
	models, err := s.gen.ListModels(r.Context())
	if err != nil {
		// Let the generation call report the real failure.
		return true
	}
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) error(w http.ResponseWriter, status int, detail string) {
	s.json(w, status, errorResponse{Detail: detail})
}

func (s *Server) json(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
