package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/edustack/quiz-service/internal/config"
	"github.com/edustack/quiz-service/internal/models"
)

const testSecret = "test-secret"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: testSecret, Issuer: "edustack-identity", Audience: "quiz-service"}
}

func signToken(t *testing.T, secret, subject, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "edustack-identity",
			Audience:  jwt.ClaimStrings{"quiz-service"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func authTestRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", append(middleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetUserID(c),
			"role":    string(GetUserRole(c)),
		})
	})...)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	auth := NewJWTAuthMiddleware(testJWTConfig())
	router := authTestRouter(auth.AuthMiddleware())

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{
			name:       "valid token",
			header:     "Bearer " + signToken(t, testSecret, "student-1", string(models.RoleStudent), time.Hour),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			header:     "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing key",
			header:     "Bearer " + signToken(t, "other-secret", "student-1", string(models.RoleStudent), time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			header:     "Bearer " + signToken(t, testSecret, "student-1", string(models.RoleStudent), -time.Minute),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	auth := NewJWTAuthMiddleware(testJWTConfig())

	var gotID string
	var gotRole models.UserRole
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", auth.AuthMiddleware(), func(c *gin.Context) {
		gotID = GetUserID(c)
		gotRole = GetUserRole(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "teacher-42", string(models.RoleTeacher), time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "teacher-42" {
		t.Errorf("expected user_id teacher-42, got %q", gotID)
	}
	if gotRole != models.RoleTeacher {
		t.Errorf("expected teacher role, got %q", gotRole)
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	auth := NewJWTAuthMiddleware(testJWTConfig())
	router := authTestRouter(auth.AuthMiddleware(), auth.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))

	studentToken := signToken(t, testSecret, "student-1", string(models.RoleStudent), time.Hour)
	teacherToken := signToken(t, testSecret, "teacher-1", string(models.RoleTeacher), time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("student must be rejected, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+teacherToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("teacher must pass, got %d", w.Code)
	}
}
