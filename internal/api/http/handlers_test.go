package http

import (
	"archive/zip"
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/filemanager"
	"github.com/GriffinCanCode/filemanager-connector/internal/domain/locale"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/config"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/monitoring"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router    *gin.Engine
	metrics   *monitoring.Metrics
	root      string
	uploadDir string
}

func newTestServer(t *testing.T, mutate func(*config.Connector)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	uploadDir := t.TempDir()

	cfg := config.DefaultConnector()
	cfg.Options.FileRoot = config.RootPath(root)
	cfg.Connector.ServerRoot = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	adapter, err := filemanager.New(cfg, filemanager.Options{Catalog: locale.English()})
	require.NoError(t, err)

	metrics := monitoring.NewMetrics()
	h := NewHandlers(adapter, metrics, nil, uploadDir)

	router := gin.New()
	router.GET("/fm", h.Connector)
	router.POST("/fm", h.Connector)
	router.GET("/health", h.Health)

	return &testServer{router: router, metrics: metrics, root: root, uploadDir: uploadDir}
}

func (s *testServer) write(t *testing.T, rel, content string) {
	t.Helper()
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func (s *testServer) get(query url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fm?"+query.Encode(), nil))
	return w
}

func (s *testServer) postForm(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/fm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, fields map[string]string, field, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/fm", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(body, &out))
	return out
}

// unwrapTextarea returns the JSON inside a textarea response.
func unwrapTextarea(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "<textarea>"), body)
	require.True(t, strings.HasSuffix(body, "</textarea>"), body)
	return decode(t, []byte(strings.TrimSuffix(strings.TrimPrefix(body, "<textarea>"), "</textarea>")))
}

func TestUnknownMode(t *testing.T) {
	s := newTestServer(t, nil)

	for _, mode := range []string{"", "launch", "GETINFO"} {
		w := s.get(url.Values{"mode": {mode}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"Error":"Mode error.","Code":-1}`, w.Body.String(), mode)
	}
}

func TestGetInfo(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "docs/a.txt", "hello")

	w := s.get(url.Values{"mode": {"getinfo"}, "path": {"/docs/a.txt"}})
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w.Body.Bytes())
	assert.Equal(t, "/docs/a.txt", got["Path"])
	assert.Equal(t, "a.txt", got["Filename"])
	assert.Equal(t, "txt", got["File Type"])
	assert.Equal(t, float64(0), got["Code"])
	assert.Equal(t, float64(5), got["Properties"].(map[string]interface{})["Size"])
}

func TestGetFolder(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "docs/a.txt", "hello")
	require.NoError(t, os.MkdirAll(filepath.Join(s.root, "docs", "sub"), 0755))

	w := s.get(url.Values{"mode": {"getfolder"}, "path": {"/docs/"}})
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w.Body.Bytes())
	require.Len(t, got, 2)
	assert.Equal(t, "txt", got["/docs/a.txt"].(map[string]interface{})["File Type"])
	assert.Equal(t, "dir", got["/docs/sub/"].(map[string]interface{})["File Type"])

	w = s.get(url.Values{"mode": {"getfolder"}, "path": {"/missing/"}})
	got = decode(t, w.Body.Bytes())
	assert.Equal(t, float64(-1), got["Code"])
	assert.Equal(t, "The directory /missing/ does not exist.", got["Error"])
}

func TestEditAndSave(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "page.txt", "<b>old</b>")

	w := s.get(url.Values{"mode": {"editfile"}, "path": {"/page.txt"}})
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, "&lt;b&gt;old&lt;/b&gt;", got["Content"])

	w = s.postForm(url.Values{"mode": {"savefile"}, "path": {"/page.txt"}, "content": {"&lt;i&gt;new&lt;/i&gt;"}})
	got = decode(t, w.Body.Bytes())
	assert.Equal(t, float64(0), got["Code"])
	assert.Equal(t, "/page.txt", got["Path"])

	data, err := os.ReadFile(filepath.Join(s.root, "page.txt"))
	require.NoError(t, err)
	assert.Equal(t, "<i>new</i>", string(data))
}

func TestSaveWithoutContent(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "page.txt", "keep")

	w := s.postForm(url.Values{"mode": {"savefile"}, "path": {"/page.txt"}})
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, "File content missing.", got["Error"])

	data, err := os.ReadFile(filepath.Join(s.root, "page.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestRenameMoveDelete(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "a/b/c.txt", "x")

	w := s.get(url.Values{"mode": {"rename"}, "old": {"/a/b/c.txt"}, "new": {"d.txt"}})
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, float64(0), got["Code"])
	assert.Equal(t, "d.txt", got["New Name"])
	assert.FileExists(t, filepath.Join(s.root, "a", "b", "d.txt"))

	w = s.get(url.Values{"mode": {"move"}, "old": {"/a/b/d.txt"}, "new": {"/x/y"}, "root": {"/"}})
	got = decode(t, w.Body.Bytes())
	assert.Equal(t, float64(0), got["Code"])
	assert.FileExists(t, filepath.Join(s.root, "x", "y", "d.txt"))

	w = s.get(url.Values{"mode": {"delete"}, "path": {"/x/"}})
	got = decode(t, w.Body.Bytes())
	assert.Equal(t, float64(0), got["Code"])
	assert.NoDirExists(t, filepath.Join(s.root, "x"))

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.OperationsTotal.WithLabelValues("rename", monitoring.StatusSuccess)))
}

func TestRootIsProtected(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.get(url.Values{"mode": {"delete"}, "path": {"/"}})
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, float64(-1), got["Code"])
	assert.DirExists(t, s.root)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.OperationErrors.WithLabelValues("delete", "root_protected")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.OperationsTotal.WithLabelValues("delete", monitoring.StatusError)))
}

func TestAddFolder(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "taken", "")

	w := s.get(url.Values{"mode": {"addfolder"}, "path": {"/"}, "name": {"new"}})
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, float64(0), got["Code"])
	assert.DirExists(t, filepath.Join(s.root, "new"))

	w = s.get(url.Values{"mode": {"addfolder"}, "path": {"/"}, "name": {"taken"}})
	got = decode(t, w.Body.Bytes())
	assert.Equal(t, "A file with the name taken already exists.", got["Error"])
}

func TestAddUpload(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(s.root, "docs"), 0755))

	w := s.upload(t, map[string]string{"mode": "add", "currentpath": "/docs/"}, addField, "notes.txt", []byte("hello"))
	require.Equal(t, http.StatusOK, w.Code)

	got := unwrapTextarea(t, w)
	assert.Equal(t, float64(0), got["Code"])
	assert.Equal(t, "notes.txt", got["Name"])
	assert.Equal(t, "/docs/", got["Path"])

	data, err := os.ReadFile(filepath.Join(s.root, "docs", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	staged, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestAddUploadDeduplicates(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "notes.txt", "first")

	w := s.upload(t, map[string]string{"mode": "add", "currentpath": "/"}, addField, "notes.txt", []byte("second"))
	got := unwrapTextarea(t, w)
	assert.Equal(t, "notes-1.txt", got["Name"])
}

func TestAddUploadRejected(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.upload(t, map[string]string{"mode": "add", "currentpath": "/"}, addField, "run.exe", []byte("MZ"))
	got := unwrapTextarea(t, w)
	assert.Equal(t, "This file type is not allowed.", got["Error"])
	assert.NoFileExists(t, filepath.Join(s.root, "run.exe"))

	staged, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, staged, "staged upload must be removed")
}

func TestAddUploadMissingFile(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.upload(t, map[string]string{"mode": "add", "currentpath": "/"}, "other", "a.txt", []byte("x"))
	got := unwrapTextarea(t, w)
	assert.Equal(t, float64(-1), got["Code"])
	assert.Equal(t, "File content missing.", got["Error"])
}

func TestAddUploadTooLarge(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Connector) {
		cfg.Upload.FileSizeLimit = 0.001
	})

	t.Run("file over limit", func(t *testing.T) {
		w := s.upload(t, map[string]string{"mode": "add", "currentpath": "/"}, addField, "big.txt", bytes.Repeat([]byte("x"), 4096))
		got := unwrapTextarea(t, w)
		assert.Equal(t, "Please upload only files smaller than 0.001MB.", got["Error"])
		assert.NoFileExists(t, filepath.Join(s.root, "big.txt"))
	})

	t.Run("body over limit", func(t *testing.T) {
		w := s.upload(t, map[string]string{"mode": "add", "currentpath": "/"}, addField, "huge.txt", bytes.Repeat([]byte("x"), 2<<20))
		got := unwrapTextarea(t, w)
		assert.Equal(t, "Please upload only files smaller than 0.001MB.", got["Error"])
		assert.NoFileExists(t, filepath.Join(s.root, "huge.txt"))
	})

	staged, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestTextareaEscapesHTML(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.upload(t, map[string]string{"mode": "add", "currentpath": "/"}, addField, "a<b>.txt", []byte("x"))
	body := w.Body.String()
	assert.NotContains(t, strings.TrimSuffix(strings.TrimPrefix(body, "<textarea>"), "</textarea>"), "<")
	assert.Contains(t, body, `a\u003cb\u003e.txt`)
	assert.FileExists(t, filepath.Join(s.root, "a<b>.txt"))
}

func TestReplaceUpload(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "docs/report.txt", "v1")

	w := s.upload(t, map[string]string{"mode": "replace", "newfilepath": "/docs/report.txt"}, replaceField, "draft.txt", []byte("v2"))
	got := unwrapTextarea(t, w)
	assert.Equal(t, float64(0), got["Code"])
	assert.Equal(t, "/docs", got["Path"])
	assert.Equal(t, "report.txt", got["Name"])

	data, err := os.ReadFile(filepath.Join(s.root, "docs", "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	w = s.upload(t, map[string]string{"mode": "replace", "newfilepath": "/docs/report.txt"}, replaceField, "draft.pdf", []byte("v3"))
	got = unwrapTextarea(t, w)
	assert.Equal(t, "Please provide a file with the following extension: .pdf", got["Error"])
}

func TestDownloadFile(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "docs/a.txt", "hello world")

	w := s.get(url.Values{"mode": {"download"}, "path": {"/docs/a.txt"}})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "a.txt")
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "hello world", w.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.Downloads.WithLabelValues(downloadFile)))
}

func TestDownloadFolder(t *testing.T) {
	s := newTestServer(t, nil)
	s.write(t, "docs/a.txt", "a")
	s.write(t, "docs/sub/b.txt", "b")
	s.write(t, "docs/.htaccess", "deny")

	w := s.get(url.Values{"mode": {"download"}, "path": {"/docs/"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=docs.zip", w.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(data)
	}

	assert.Equal(t, map[string]string{"docs/a.txt": "a", "docs/sub/b.txt": "b"}, files)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.Downloads.WithLabelValues(downloadFolder)))
}

func TestDownloadRefused(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Connector) {
		cfg.Options.Capabilities = []string{"select"}
	})
	s.write(t, "a.txt", "x")

	for _, p := range []string{"/a.txt", "/missing.txt", "../"} {
		w := s.get(url.Values{"mode": {"download"}, "path": {p}})
		got := unwrapTextarea(t, w)
		assert.Equal(t, "You are not allowed to perform this action.", got["Error"], p)
	}
}

func TestDownloadMissingFile(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.get(url.Values{"mode": {"download"}, "path": {"/missing.txt"}})
	got := unwrapTextarea(t, w)
	assert.Equal(t, float64(-1), got["Code"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w.Body.Bytes())
	assert.Equal(t, "healthy", got["status"])
	assert.Contains(t, got, "metrics")
}
