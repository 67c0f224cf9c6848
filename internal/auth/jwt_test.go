package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sdelacruz/yourplaces-be/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	Init("test-secret")

	user := models.User{ID: "u1", Username: "alice"}
	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Errorf("claims = %q/%q, want u1/alice", claims.UserID, claims.Username)
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	Init("test-secret")

	token, err := GenerateToken(models.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := ValidateToken(tampered); err == nil {
		t.Error("tampered token validated")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	Init("test-secret")
	token, err := GenerateToken(models.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	Init("another-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different key validated")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	Init("test-secret")

	claims := &Claims{
		UserID:   "u1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := ValidateToken(expired); err == nil {
		t.Error("expired token validated")
	}
}

func TestMiddleware(t *testing.T) {
	Init("test-secret")

	var gotClaims *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := Middleware()(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "not-a-bearer-token")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateToken(models.User{ID: "u1", Username: "alice"})
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotClaims == nil || gotClaims.UserID != "u1" {
			t.Errorf("claims not attached to context: %+v", gotClaims)
		}
	})

	t.Run("preflight passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
