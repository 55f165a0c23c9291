package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret, role string) string {
	t.Helper()
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops-console",
		"role": role,
	})
	s, err := tkn.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runChain(token string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users/role", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return rec, h(c)
}

func TestAuthAcceptsValidToken(t *testing.T) {
	rec, err := runChain(signedToken(t, testSecret, "admin"), Auth(testSecret))
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", signedToken(t, "other-secret", "admin")},
	}
	for _, tc := range cases {
		_, err := runChain(tc.token, Auth(testSecret))
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %v", tc.name, err)
		}
	}
}

func TestRequireRole(t *testing.T) {
	rec, err := runChain(signedToken(t, testSecret, "admin"), Auth(testSecret), RequireRole("admin"))
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("admin rejected: %v (%d)", err, rec.Code)
	}

	rec, err = runChain(signedToken(t, testSecret, "customer"), Auth(testSecret), RequireRole("admin"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin got %d, want 403", rec.Code)
	}
}
