package services

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/SaiNageswarS/doc-filler/blankfill"
	"github.com/SaiNageswarS/doc-filler/docconv"
	"github.com/SaiNageswarS/doc-filler/pipeline"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultBatchSize = 30

type DocumentService struct {
	converter      pipeline.DocumentConverter
	filler         pipeline.BlankFiller
	maxUploadBytes int64
}

func ProvideDocumentService(converter pipeline.DocumentConverter, filler pipeline.BlankFiller, maxUploadBytes int64) *DocumentService {
	return &DocumentService{
		converter:      converter,
		filler:         filler,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *DocumentService) RegisterHTTP(r chi.Router) {
	r.Post("/convert-and-fill", s.handleConvertAndFill)
	r.Post("/download-docx", s.handleDownloadDocx)
	r.Get("/health", s.handleHealth)
}

type fillRequest struct {
	Context   *string `json:"context"`
	Example   string  `json:"example"`
	BatchSize *int    `json:"batch_size"`
}

type fillResponse struct {
	FilledDocument string `json:"filled_document"`
}

func (s *DocumentService) handleConvertAndFill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		badRequest(w, "Invalid multipart form: %v", err)
		return
	}

	rawRequest, ok := r.MultipartForm.Value["request"]
	if !ok || len(rawRequest) == 0 {
		badRequest(w, "Missing request field")
		return
	}

	var req fillRequest
	if err := json.Unmarshal([]byte(rawRequest[0]), &req); err != nil {
		badRequest(w, "Invalid JSON in request field")
		return
	}
	if req.Context == nil {
		badRequest(w, "context is required")
		return
	}
	batchSize := defaultBatchSize
	if req.BatchSize != nil {
		batchSize = *req.BatchSize
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "Missing file")
		return
	}
	defer file.Close()

	if !docconv.IsDocument(header.Filename) {
		badRequest(w, "Only .docx files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Info("Received document", zap.String("filename", header.Filename), zap.Int("size", len(data)), zap.Int("batchSize", batchSize))

	markdown, err := s.converter.ToMarkdown(data)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.filler.FillBlanks(r.Context(), blankfill.Request{
		Text:      markdown,
		Context:   *req.Context,
		Example:   req.Example,
		BatchSize: batchSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fillResponse{FilledDocument: result.Text})
}

type downloadRequest struct {
	Content  *string `json:"content"`
	IsBase64 bool    `json:"isBase64"`
}

func (s *DocumentService) handleDownloadDocx(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUploadBytes)).Decode(&req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	if req.Content == nil {
		badRequest(w, "content is required")
		return
	}

	var doc []byte
	if req.IsBase64 {
		decoded, err := base64.StdEncoding.DecodeString(*req.Content)
		if err != nil {
			badRequest(w, "Invalid base64 content")
			return
		}
		doc = decoded
	} else {
		converted, err := s.converter.ToDocument(*req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		doc = converted
	}

	w.Header().Set("Content-Type", docconv.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="output.docx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		logger.Error("Failed to write document", zap.Error(err))
	}
}

func (s *DocumentService) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
