package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"core/internal/service"

	"github.com/gin-gonic/gin"
)

type fakeVerifier struct {
	user  *service.AuthUser
	err   error
	token string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*service.AuthUser, error) {
	f.token = token
	return f.user, f.err
}

func authRouter(verifier TokenVerifier, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", Auth(verifier))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"role":    c.GetString(ContextRole),
		})
	})
	return router
}

func TestAuth_ValidToken(t *testing.T) {
	verifier := &fakeVerifier{user: &service.AuthUser{UserID: "u1", Role: "tenant"}}
	router := authRouter(verifier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if verifier.token != "token-abc" {
		t.Errorf("verified token = %q, want %q", verifier.token, "token-abc")
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	router := authRouter(&fakeVerifier{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_NonBearerScheme(t *testing.T) {
	router := authRouter(&fakeVerifier{user: &service.AuthUser{UserID: "u1"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_VerificationFailure(t *testing.T) {
	router := authRouter(&fakeVerifier{err: errors.New("upstream 401")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"allowed role", "tenant", []string{"tenant"}, http.StatusOK},
		{"case insensitive", "Tenant", []string{"tenant"}, http.StatusOK},
		{"one of several", "landlord", []string{"tenant", "landlord"}, http.StatusOK},
		{"disallowed role", "admin", []string{"tenant"}, http.StatusForbidden},
		{"empty role", "", []string{"tenant"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{user: &service.AuthUser{UserID: "u1", Role: tt.role}}
			router := authRouter(verifier, tt.allowed...)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer t")
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestRateLimit_NilClientPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/limited", RateLimit(nil, 1, 0), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/limited", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 without Redis", i+1, w.Code)
		}
	}
}
