package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	h := chiMiddleware.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/photos", nil))

	out := buf.String()
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, out, `"message":"inside"`)
	assert.Contains(t, out, `"path":"/photos"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"request_id":`)
}
