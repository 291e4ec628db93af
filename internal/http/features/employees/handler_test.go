package employees

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/pkg/domain"
	"github.com/insightguardian/insightguardian/pkg/repository/memstore"
	"github.com/insightguardian/insightguardian/pkg/workspace"
)

type fakeUploader struct {
	key         string
	contentType string
	err         error
}

func (u *fakeUploader) Put(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.key, u.contentType = key, contentType
	return "https://cdn.example.com/" + key, nil
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newRouter(h *Handler, orgID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := &domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin, OrganizationID: orgID}
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(r.Context(), p)))
		})
	})
	h.RegisterRoutes(r)
	h.RegisterUploadRoutes(r)
	return r
}

func newHandler(up Uploader) *Handler {
	store := memstore.New()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), workspace.NewService(store, store), up, 1<<10)
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return h
}

func serve(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	}
	return rec.Code, out
}

const fiveImages = `["u1","u2","u3","u4","u5"]`

func TestEmployeesCRUD(t *testing.T) {
	router := newRouter(newHandler(&fakeUploader{}), uuid.New())

	status, body := serve(t, router, http.MethodPost, "/employees",
		`{"name":"Bob","role":"Guard","imageUrls":`+fiveImages+`}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Employee added successfully", body["message"])
	id := body["employeeId"].(string)

	status, body = serve(t, router, http.MethodPut, "/employees/"+id, `{"role":"Supervisor"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Employee updated successfully", body["message"])

	status, body = serve(t, router, http.MethodGet, "/employees/"+id, "")
	require.Equal(t, http.StatusOK, status)
	emp := body["employee"].(map[string]any)
	assert.Equal(t, "Bob", emp["name"])
	assert.Equal(t, "Supervisor", emp["role"])

	status, _ = serve(t, router, http.MethodPut, "/employees/"+id, `{"imageUrls":["only-one"]}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = serve(t, router, http.MethodDelete, "/employees/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Employee deleted successfully", body["message"])

	status, body = serve(t, router, http.MethodGet, "/employees", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["employees"])
}

func TestEmployees_Errors(t *testing.T) {
	router := newRouter(newHandler(&fakeUploader{}), uuid.New())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"too few images", http.MethodPost, "/employees", `{"name":"Bob","role":"Guard","imageUrls":["a","b"]}`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/employees", `{"role":"Guard","imageUrls":` + fiveImages + `}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/employees", `{"name":`, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/employees/" + uuid.NewString(), "", http.StatusNotFound},
		{"malformed id", http.MethodGet, "/employees/42", "", http.StatusNotFound},
		{"update unknown", http.MethodPut, "/employees/" + uuid.NewString(), `{"name":"X"}`, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/employees/" + uuid.NewString(), "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := serve(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAddImage(t *testing.T) {
	orgID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	tests := []struct {
		name       string
		field      string
		filename   string
		data       []byte
		uploadErr  error
		wantStatus int
		wantErr    string
	}{
		{name: "png", field: "file", filename: "face.png", data: png, wantStatus: http.StatusOK},
		{name: "wrong field", field: "image", filename: "face.png", data: png, wantStatus: http.StatusBadRequest, wantErr: "No file uploaded"},
		{name: "empty file", field: "file", filename: "face.png", data: nil, wantStatus: http.StatusBadRequest, wantErr: "No file uploaded"},
		{name: "text", field: "file", filename: "face.png", data: []byte("hello"), wantStatus: http.StatusBadRequest, wantErr: "file must be an image"},
		{name: "svg", field: "file", filename: "x.svg", data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), wantStatus: http.StatusBadRequest, wantErr: "file must be an image"},
		{name: "too large", field: "file", filename: "big.png", data: append(append([]byte{}, png...), make([]byte, 2<<10)...), wantStatus: http.StatusRequestEntityTooLarge, wantErr: "file too large"},
		{name: "storage failure", field: "file", filename: "face.png", data: png, uploadErr: errors.New("bucket down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{err: tt.uploadErr}
			router := newRouter(newHandler(up), orgID)

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/employees/addImage", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			var out map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, out["error"])
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "11111111-2222-3333-4444-555555555555/1700000000000-face.png", up.key)
				assert.Equal(t, "image/png", up.contentType)
				assert.Equal(t, "https://cdn.example.com/"+up.key, out["publicUrl"])
			}
		})
	}
}

func TestIsAllowedImage(t *testing.T) {
	assert.True(t, isAllowedImage(mimetype.Detect(png)))
	assert.False(t, isAllowedImage(mimetype.Detect([]byte("plain text"))))
	assert.False(t, isAllowedImage(mimetype.Detect([]byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))))
}

func TestAddImage_ExtensionFollowsContent(t *testing.T) {
	up := &fakeUploader{}
	router := newRouter(newHandler(up), uuid.New())

	polyglot := []byte("GIF89a/*\x00*/<html><script>alert(document.domain)</script></html>")
	for _, name := range []string{"evil.html", "evil.js"} {
		body, contentType := multipartBody(t, "file", name, polyglot)
		req := httptest.NewRequest(http.MethodPost, "/employees/addImage", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "image/gif", up.contentType)
		assert.True(t, strings.HasSuffix(up.key, "-evil.gif"), up.key)
	}
}
