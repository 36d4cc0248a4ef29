package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SaiNageswarS/doc-filler/pipeline"
	"github.com/SaiNageswarS/doc-filler/store"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PipelineService struct {
	executor       *pipeline.Executor
	store          store.Store
	maxUploadBytes int64
	now            func() time.Time
}

func ProvidePipelineService(executor *pipeline.Executor, pipelines store.Store, maxUploadBytes int64) *PipelineService {
	return &PipelineService{
		executor:       executor,
		store:          pipelines,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

func (s *PipelineService) RegisterHTTP(r chi.Router) {
	r.Post("/api/pipeline/execute", s.handleExecute)
	r.Post("/save-pipeline", s.handleSave)
	r.Get("/list-pipelines", s.handleList)
	r.Get("/load-pipeline/{name}", s.handleLoad)
}

func (s *PipelineService) handleExecute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		badRequest(w, "Invalid multipart form: %v", err)
		return
	}

	rawConfig, ok := r.MultipartForm.Value["pipeline_config"]
	if !ok || len(rawConfig) == 0 {
		badRequest(w, "Missing pipeline_config field")
		return
	}

	cfg, err := pipeline.ParseConfig([]byte(rawConfig[0]))
	if err != nil {
		writeError(w, err)
		return
	}
	compiled, err := pipeline.Compile(cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		badRequest(w, "No files uploaded")
		return
	}

	files := make([]pipeline.FileInput, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, err)
			return
		}
		files = append(files, pipeline.FileInput{Name: header.Filename, Data: data})
	}

	logger.Info("Executing pipeline", zap.Int("blocks", len(compiled.Blocks)), zap.Int("files", len(files)))
	results, err := s.executor.RunAll(r.Context(), compiled, files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *PipelineService) handleSave(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		badRequest(w, "Pipeline must be a JSON object")
		return
	}

	name := ""
	if raw, ok := fields["name"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &name); err != nil {
			badRequest(w, "Pipeline name must be a string")
			return
		}
	}
	if name == "" {
		name = fmt.Sprintf("pipeline_%d", s.now().Unix())
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		badRequest(w, "Pipeline must be a JSON object")
		return
	}

	if err := s.store.Save(r.Context(), name, pretty.Bytes()); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Pipeline saved as " + name})
}

func (s *PipelineService) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pipelines": entries})
}

func (s *PipelineService) handleLoad(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := s.store.Load(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Error("Failed to write pipeline", zap.Error(err))
	}
}
