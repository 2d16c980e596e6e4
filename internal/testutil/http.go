package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nurpe/recycle-disposals/internal/model"
)

const JWTSecret = "disposal-service-test-secret"

// GenerateTestToken signs a token for p with the shared test secret.
func GenerateTestToken(p model.Principal) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":  p.UserID.String(),
		"role": string(p.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	return token
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// ParseResponse decodes a JSON response body into dest.
func ParseResponse(rec *httptest.ResponseRecorder, dest interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), dest)
}

func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}
