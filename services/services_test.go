package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SaiNageswarS/doc-filler/blankfill"
	"github.com/SaiNageswarS/doc-filler/docconv"
	"github.com/SaiNageswarS/doc-filler/ordered"
	"github.com/SaiNageswarS/doc-filler/pipeline"
	"github.com/SaiNageswarS/doc-filler/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 8 << 20

type fakeFiller struct {
	fills ordered.Map
	last  blankfill.Request
	err   error
}

func (f *fakeFiller) FillBlanks(ctx context.Context, req blankfill.Request) (*blankfill.Result, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &blankfill.Result{Text: blankfill.ApplyFills(req.Text, f.fills), Fills: f.fills, APICalls: 2}, nil
}

type testServer struct {
	handler http.Handler
	filler  *fakeFiller
	store   *store.FileStore
	pipes   *PipelineService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	filler := &fakeFiller{fills: ordered.Map{{Key: "[Name]", Value: "Ada"}}}
	conv := docconv.New()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	docs := ProvideDocumentService(conv, filler, testMaxUpload)
	pipes := ProvidePipelineService(pipeline.NewExecutor(conv, filler), fs, testMaxUpload)
	pipes.now = func() time.Time { return time.Unix(1700000000, 0) }

	return &testServer{
		handler: NewRouter([]string{"http://localhost:3000"}, docs, pipes),
		filler:  filler,
		store:   fs,
		pipes:   pipes,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func docxBytes(t *testing.T, markdown string) []byte {
	t.Helper()
	data, err := docconv.New().ToDocument(markdown)
	require.NoError(t, err)
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestConvertAndFill(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "/convert-and-fill",
		map[string]string{"request": `{"context":"Name is Ada","example":"ex"}`},
		formFile{field: "file", name: "form.docx", data: docxBytes(t, "Dear [Name],")})
	rec := s.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Dear Ada,", decodeBody(t, rec)["filled_document"])
	assert.Equal(t, "Name is Ada", s.filler.last.Context)
	assert.Equal(t, "ex", s.filler.last.Example)
	assert.Equal(t, defaultBatchSize, s.filler.last.BatchSize)
}

func TestConvertAndFill_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   formFile
		code   int
		detail string
	}{
		{
			name:   "invalid request json",
			fields: map[string]string{"request": `{not json`},
			file:   formFile{field: "file", name: "a.docx", data: []byte("x")},
			code:   http.StatusBadRequest,
			detail: "Invalid JSON in request field",
		},
		{
			name:   "wrong extension",
			fields: map[string]string{"request": `{"context":"c"}`},
			file:   formFile{field: "file", name: "a.pdf", data: []byte("x")},
			code:   http.StatusBadRequest,
			detail: "Only .docx files are supported",
		},
		{
			name:   "missing context",
			fields: map[string]string{"request": `{"example":"e"}`},
			file:   formFile{field: "file", name: "a.docx", data: []byte("x")},
			code:   http.StatusBadRequest,
			detail: "context is required",
		},
		{
			name:   "corrupt document",
			fields: map[string]string{"request": `{"context":"c"}`},
			file:   formFile{field: "file", name: "a.docx", data: []byte("not a zip")},
			code:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(multipartRequest(t, "/convert-and-fill", tt.fields, tt.file))

			assert.Equal(t, tt.code, rec.Code)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, decodeBody(t, rec)["detail"])
			}
		})
	}
}

func TestDownloadDocx(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/download-docx", strings.NewReader(`{"content":"# Title\n\nBody"}`))
	rec := s.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, docconv.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="output.docx"`, rec.Header().Get("Content-Disposition"))

	markdown, err := docconv.New().ToMarkdown(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", markdown)
}

func TestDownloadDocx_Base64(t *testing.T) {
	s := newTestServer(t)
	original := docxBytes(t, "Hello")

	payload, _ := json.Marshal(map[string]any{"content": base64.StdEncoding.EncodeToString(original), "isBase64": true})
	rec := s.do(httptest.NewRequest(http.MethodPost, "/download-docx", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, original, rec.Body.Bytes())

	rec = s.do(httptest.NewRequest(http.MethodPost, "/download-docx", strings.NewReader(`{"content":"%%%","isBase64":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecutePipeline(t *testing.T) {
	s := newTestServer(t)

	config := `{"blocks":[
		{"id":"in","type":"DOCUMENT_INPUT","config":{}},
		{"id":"find","type":"BLANK_FINDER","config":{}},
		{"id":"out","type":"DOCUMENT_OUTPUT","config":{}}
	]}`
	req := multipartRequest(t, "/api/pipeline/execute",
		map[string]string{"pipeline_config": config},
		formFile{field: "files", name: "letter.docx", data: docxBytes(t, "Signed on [Date]")})
	rec := s.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Results []struct {
			Filename string         `json:"filename"`
			Content  string         `json:"content"`
			Metadata map[string]any `json:"metadata"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)

	result := body.Results[0]
	assert.Equal(t, "letter.docx", result.Filename)
	assert.Equal(t, "Signed on [Date]", result.Content)
	assert.Equal(t, []any{"[Date]"}, result.Metadata[pipeline.MetaBlanksFound])
	assert.Equal(t, "docx", result.Metadata[pipeline.MetaOutputFormat])

	encoded, ok := result.Metadata[pipeline.MetaDocxContent].(string)
	require.True(t, ok)
	_, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(t, err)
}

func TestExecutePipeline_Rejections(t *testing.T) {
	file := formFile{field: "files", name: "a.txt", data: []byte("x")}

	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
	}{
		{name: "missing config", fields: map[string]string{}, files: []formFile{file}},
		{name: "invalid json", fields: map[string]string{"pipeline_config": "{"}, files: []formFile{file}},
		{name: "unknown block", fields: map[string]string{"pipeline_config": `{"blocks":[{"id":"x","type":"NOPE","config":{}}]}`}, files: []formFile{file}},
		{name: "no files", fields: map[string]string{"pipeline_config": `{"blocks":[]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(multipartRequest(t, "/api/pipeline/execute", tt.fields, tt.files...))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSaveListLoadPipeline(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/save-pipeline", strings.NewReader(`{"name":"contracts","blocks":[]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pipeline saved as contracts", decodeBody(t, rec)["message"])

	rec = s.do(httptest.NewRequest(http.MethodPost, "/save-pipeline", strings.NewReader(`{"blocks":[]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pipeline saved as pipeline_1700000000", decodeBody(t, rec)["message"])

	rec = s.do(httptest.NewRequest(http.MethodGet, "/list-pipelines", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Pipelines []store.Entry `json:"pipelines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	names := []string{}
	for _, e := range listed.Pipelines {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"contracts", "pipeline_1700000000"}, names)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/load-pipeline/contracts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{\n  \"name\": \"contracts\",\n  \"blocks\": []\n}", rec.Body.String())
}

func TestSavePipeline_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "nope"},
		{name: "array", body: `[1,2]`},
		{name: "numeric name", body: `{"name":42}`},
		{name: "path name", body: `{"name":"../escape"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(httptest.NewRequest(http.MethodPost, "/save-pipeline", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoadPipeline_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/load-pipeline/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Pipeline not found", decodeBody(t, rec)["detail"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/save-pipeline", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := s.do(req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = s.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
