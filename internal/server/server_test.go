package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoncanvas "github.com/porticus-lab/go-json-canvas"
	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/internal/pdfinfo"
	"github.com/porticus-lab/go-json-canvas/render"
	"github.com/porticus-lab/go-json-canvas/store"
)

const invoice = `{"customer":{"name":"Ada"},"total":129.5,"items":[{"sku":"A-1","qty":2},{"sku":"B-7","qty":1}]}`

var testTimeout = fiber.TestConfig{Timeout: 30 * time.Second}

// seededTemplates stores one template named "Invoice" with a text and a
// table element.
func seededTemplates(t *testing.T) *store.Templates {
	t.Helper()
	tpls := store.NewTemplates(store.NewMemory())
	ed := jsoncanvas.NewEditor(jsoncanvas.WithTemplates(tpls))
	require.NoError(t, ed.LoadJSON("invoice.json", []byte(invoice)))
	_, err := ed.DropPath("customer.name", jsoncanvas.Point{X: 40, Y: 40})
	require.NoError(t, err)
	_, err = ed.DropPath("items", jsoncanvas.Point{X: 40, Y: 120})
	require.NoError(t, err)
	_, err = ed.SaveTemplate(context.Background(), "Invoice")
	require.NoError(t, err)
	return tpls
}

func do(t *testing.T, s *Server, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, testTimeout)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestHealth(t *testing.T) {
	s := New(Config{})
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"alive"}`, string(body))

	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ready","templates":false,"export":false}`, string(body))
}

func TestFields(t *testing.T) {
	s := New(Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fields?filter=items.0", strings.NewReader(invoice))
	req.Header.Set("Content-Type", "application/json")
	resp, body := do(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []fieldView
	require.NoError(t, json.Unmarshal(body, &got))
	paths := make([]string, 0, len(got))
	for _, f := range got {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "items.0.sku")
	assert.NotContains(t, paths, "total")

	resp, body = do(t, s, httptest.NewRequest(http.MethodPost, "/api/v1/fields", strings.NewReader("{nope")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Please select a valid JSON file")
}

func TestTemplates(t *testing.T) {
	s := New(Config{Templates: seededTemplates(t)})
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []templateView
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Invoice", got[0].Name)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, 2, got[0].Elements)

	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/templates/0/preview", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Ada")
	assert.Contains(t, string(body), "A-1")

	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/templates/7/preview", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/templates/x/preview", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTemplates_NoStore(t *testing.T) {
	s := New(Config{})
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestExport(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	x := export.NewExporter(render.NewRasterizer(), export.FpdfAssembler{},
		export.WithSupersample(1),
		export.WithClock(func() time.Time { return at }))
	s := New(Config{Templates: seededTemplates(t), Exporter: x})

	resp, body := do(t, s, httptest.NewRequest(http.MethodPost, "/api/v1/templates/0/export", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Invoice-2026-10-15T09-30-00.pdf")

	info, err := pdfinfo.Inspect(body)
	require.NoError(t, err)
	assert.Equal(t, 1, info.PageCount())
}

func TestExport_Unavailable(t *testing.T) {
	s := New(Config{Templates: seededTemplates(t)})
	resp, body := do(t, s, httptest.NewRequest(http.MethodPost, "/api/v1/templates/0/export", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "Could not find the content to export")
}

type blockingRasterizer struct {
	release chan struct{}
}

func (b blockingRasterizer) Rasterize(ctx context.Context, s *export.Surface, scale float64) (*export.Bitmap, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return nil, errors.New("released")
}

func TestExport_Busy(t *testing.T) {
	r := blockingRasterizer{release: make(chan struct{})}
	x := export.NewExporter(r, export.FpdfAssembler{})
	s := New(Config{Templates: seededTemplates(t), Exporter: x})

	first := make(chan int, 1)
	go func() {
		resp, err := s.App().Test(httptest.NewRequest(http.MethodPost, "/api/v1/templates/0/export", nil), testTimeout)
		if err != nil {
			first <- 0
			return
		}
		resp.Body.Close()
		first <- resp.StatusCode
	}()
	require.Eventually(t, x.Busy, 5*time.Second, 10*time.Millisecond)

	resp, _ := do(t, s, httptest.NewRequest(http.MethodPost, "/api/v1/templates/0/export", nil))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(r.release)
	assert.Equal(t, http.StatusInternalServerError, <-first, "rasterizer failure surfaces as a server error")
}

func TestAuth(t *testing.T) {
	secret := "s3cret"
	s := New(Config{JWTSecret: secret})

	resp, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, _ = do(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := IssueToken([]byte("other"), "ada", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	resp, _ = do(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired, err := IssueToken([]byte(secret), "ada", -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	resp, _ = do(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := IssueToken([]byte(secret), "ada", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = do(t, s, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "probes stay open")
}
