package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(expiry time.Duration) *service.AuthService {
	return service.NewAuthService(&config.Config{JWTSecret: "middleware-secret", JWTExpiry: expiry, BcryptCost: 4})
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func TestRequireEvaluatorJWT(t *testing.T) {
	auth := newAuth(time.Hour)
	r := gin.New()
	r.GET("/me", RequireEvaluatorJWT(auth), func(c *gin.Context) {
		response.Success(c, http.StatusOK, GetClaims(c).UserID)
	})

	valid, _ := auth.GenerateToken(5, model.RoleEvaluator)
	expired, _ := newAuth(-time.Minute).GenerateToken(5, model.RoleEvaluator)

	tests := []struct {
		name   string
		header string
		status int
		code   response.ErrCode
	}{
		{"valid", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, response.ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if got := errorCode(t, w); got != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, got)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := newAuth(time.Hour)
	r := gin.New()
	r.GET("/admin", RequireEvaluatorJWT(auth), RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	evaluator, _ := auth.GenerateToken(1, model.RoleEvaluator)
	admin, _ := auth.GenerateToken(2, model.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+evaluator)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden || errorCode(t, w) != response.ErrAdminAccessOnly {
		t.Errorf("expected 403 ADMIN_ACCESS_ONLY, got %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for admin, got %d", w.Code)
	}
}

func TestRequireWSAuth(t *testing.T) {
	auth := newAuth(time.Hour)
	r := gin.New()
	r.GET("/ws", RequireWSAuth(auth), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	token, _ := auth.GenerateToken(1, model.RoleEvaluator)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 with token, got %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Now()

	if !rl.allow("10.0.0.1", now) || !rl.allow("10.0.0.1", now) {
		t.Fatal("expected the first two requests to pass")
	}
	if rl.allow("10.0.0.1", now) {
		t.Error("expected the third request to be limited")
	}
	if !rl.allow("10.0.0.2", now) {
		t.Error("expected other clients to keep their own bucket")
	}
	if !rl.allow("10.0.0.1", now.Add(time.Minute)) {
		t.Error("expected tokens refilled after one interval")
	}

	r := gin.New()
	r.GET("/login", NewRateLimiter(ctx, 1, time.Minute).Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		if w.Code != want {
			t.Errorf("request %d: expected %d, got %d", i, want, w.Code)
		}
	}
}

func TestCacheControl(t *testing.T) {
	r := gin.New()
	r.GET("/catalog", CacheControl(time.Hour), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("unexpected header %q", got)
	}
}
