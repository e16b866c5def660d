package item

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/service/internal/middleware"
	"github.com/mediavault/service/internal/response"
)

const testSecret = "test-secret"

func testRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc, _ := newTestService(testConfig())
	handler := NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/api/v1/items", func(r chi.Router) {
		r.Use(middleware.RequireAuth(testSecret))
		r.Post("/", handler.Upload)
		r.Get("/", handler.List)
		r.Get("/{category}/{variant}/{name}", handler.GetVariant)
		r.Delete("/{category}/{variant}/{name}", handler.DeleteVariant)
	})
	return r, svc
}

func bearerToken(t *testing.T, name, id string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id,
		"name": name,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func multipartUpload(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadAndRetrieve(t *testing.T) {
	router, _ := testRouter(t)
	auth := bearerToken(t, "alice", "42")

	body, contentType := multipartUpload(t, "notes.txt", []byte("hello shelf"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/items/unknown/original/notes.txt", nil)
	req.Header.Set("Authorization", auth)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello shelf", rec.Body.String())
}

func TestUploadRequiresAuth(t *testing.T) {
	router, _ := testRouter(t)

	body, contentType := multipartUpload(t, "notes.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadRejectsPathTraversalNames(t *testing.T) {
	router, _ := testRouter(t)
	auth := bearerToken(t, "alice", "42")

	for _, name := range []string{"..", "a/b.txt", `a\b.txt`} {
		// The explicit name field bypasses the filename normalization the
		// multipart reader applies, so it is the hostile path here.
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "benign.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, writer.WriteField("name", name))
		require.NoError(t, writer.Close())
		contentType := writer.FormDataContentType()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/items/", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "name %q must be rejected", name)
	}
}

func TestListReturnsEnvelope(t *testing.T) {
	router, svc := testRouter(t)
	auth := bearerToken(t, "alice", "42")

	owner := Owner{Name: "alice", ID: "42"}
	require.NoError(t, svc.AddItem(context.Background(), owner, "notes.txt", []byte("x")))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/", nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)

	items, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "unknown", first["type"])
	attr := first["attr"].(map[string]interface{})
	assert.Equal(t, "notes.txt", attr[AttrDisplayName])
}

func TestGetVariantValidatesCoordinates(t *testing.T) {
	router, _ := testRouter(t)
	auth := bearerToken(t, "alice", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/video/original/x.mp4", nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetVariantNotFound(t *testing.T) {
	router, _ := testRouter(t)
	auth := bearerToken(t, "alice", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/unknown/original/ghost.txt", nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetVariantBadEncoding(t *testing.T) {
	router, _ := testRouter(t)
	auth := bearerToken(t, "alice", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/unknown/original/x.txt?encoding=GZIP", nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteVariantEndpoint(t *testing.T) {
	router, svc := testRouter(t)
	auth := bearerToken(t, "alice", "42")

	owner := Owner{Name: "alice", ID: "42"}
	require.NoError(t, svc.AddItem(context.Background(), owner, "notes.txt", []byte("x")))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/items/unknown/original/notes.txt", nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, true, data["deleted"])
}
