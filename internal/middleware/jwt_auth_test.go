package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret, userID string, expiresIn time.Duration) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func runMiddleware(t *testing.T, decorate func(*http.Request)) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	decorate(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID string
	handler := JWTAuthMiddleware()(func(c echo.Context) error {
		gotUserID, _ = c.Get("userID").(string)
		return c.NoContent(http.StatusOK)
	})
	return gotUserID, handler(c)
}

func TestJWTAuthFromHeader(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")
	token := signToken(t, "test-secret", "64f000000000000000000001", time.Hour)

	userID, err := runMiddleware(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if err != nil {
		t.Fatalf("middleware rejected a valid token: %v", err)
	}
	if userID != "64f000000000000000000001" {
		t.Fatalf("userID = %q", userID)
	}
}

func TestJWTAuthFromCookie(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")
	token := signToken(t, "test-secret", "64f000000000000000000002", time.Hour)

	userID, err := runMiddleware(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	})
	if err != nil {
		t.Fatalf("middleware rejected a valid cookie token: %v", err)
	}
	if userID != "64f000000000000000000002" {
		t.Fatalf("userID = %q", userID)
	}
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	_, err := runMiddleware(t, func(*http.Request) {})
	assertUnauthorized(t, err)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")
	token := signToken(t, "some-other-secret", "64f000000000000000000003", time.Hour)

	_, err := runMiddleware(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assertUnauthorized(t, err)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")
	token := signToken(t, "test-secret", "64f000000000000000000004", -time.Minute)

	_, err := runMiddleware(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assertUnauthorized(t, err)
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", httpErr.Code)
	}
}
