package gallery

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallery/service/internal/middleware"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T, f *fixture, maxUpload int64) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(testSecret))
		NewHandler(f.svc, maxUpload).Routes(r)
	})
	return r
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func uploadRequest(t *testing.T, sub, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, sub))
	return req
}

func do(h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestHandler_UploadListDelete(t *testing.T) {
	f := newFixture(t)
	h := newRouter(t, f, 1<<20)

	rr, env := do(h, uploadRequest(t, "alice", "harbor.png", pngBytes))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created Image
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Harbor", created.Title)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr, env = do(h, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []Image
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].URL)

	req = httptest.NewRequest(http.MethodGet, "/images/"+created.BlobName+"/url", nil)
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr, env = do(h, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var got urlData
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, list[0].URL, got.URL)

	for i := 0; i < 2; i++ {
		req = httptest.NewRequest(http.MethodPost, "/delete-file", strings.NewReader(`{"file":"`+created.BlobName+`"}`))
		req.Header.Set("Authorization", bearer(t, "alice"))
		rr, env = do(h, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true}`, string(env.Data))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr, env = do(h, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestHandler_RequiresToken(t *testing.T) {
	f := newFixture(t)
	h := newRouter(t, f, 1<<20)

	rr, _ := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr, _ = do(h, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_UploadErrors(t *testing.T) {
	f := newFixture(t)

	rr, _ := do(newRouter(t, f, 16), uploadRequest(t, "alice", "big.png", bytes.Repeat([]byte{1}, 1024)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/upload-image", strings.NewReader("nope"))
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr, _ = do(newRouter(t, f, 1<<20), req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_DeleteErrors(t *testing.T) {
	f := newFixture(t)
	h := newRouter(t, f, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/delete-file", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr, _ := do(h, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	img, err := f.svc.Upload(f.ctx, "bob", pngBytes, "image/png", "b.png")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/delete-file", strings.NewReader(`{"file":"`+img.BlobName+`"}`))
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr, _ = do(h, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_URLNotOwned(t *testing.T) {
	f := newFixture(t)
	h := newRouter(t, f, 1<<20)
	img, err := f.svc.Upload(f.ctx, "bob", pngBytes, "image/png", "b.png")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/images/"+img.BlobName+"/url", nil)
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr, _ := do(h, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
