package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type stubParser struct {
	principal model.Principal
	err       error
}

func (s stubParser) Parse(string) (model.Principal, error) {
	return s.principal, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuth(t *testing.T) {
	principal := model.Principal{UserID: uuid.New(), Role: model.RoleCompany}

	tests := []struct {
		name   string
		header string
		parser stubParser
		want   int
	}{
		{"missing header", "", stubParser{principal: principal}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubParser{principal: principal}, http.StatusUnauthorized},
		{"rejected token", "Bearer abc", stubParser{err: errors.New("bad")}, http.StatusUnauthorized},
		{"valid", "Bearer abc", stubParser{principal: principal}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", Auth(tt.parser), func(c *gin.Context) {
				principal, _ := MustPrincipal(c)
				c.JSON(http.StatusOK, gin.H{"uid": principal.UserID})
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, rec.Body.String(), principal.UserID.String())
			}
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestRequestIDGenerated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}
