package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"folio/internal/domain"
	"folio/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWKSVerifier_VerifyToken(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	verifier := newVerifier(func(*jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sign := func(t *testing.T, signer *ecdsa.PrivateKey, claims models.Claims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(signer)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	valid := func(sub, role string, exp time.Time) models.Claims {
		return models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				ExpiresAt: jwt.NewNumericDate(exp),
			},
			Role: role,
		}
	}

	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		token   string
		wantSub string
		wantErr bool
	}{
		{name: "valid", token: sign(t, key, valid("user-1", "authenticated", future)), wantSub: "user-1"},
		{name: "expired", token: sign(t, key, valid("user-1", "authenticated", time.Now().Add(-time.Hour))), wantErr: true},
		{name: "wrong key", token: sign(t, other, valid("user-1", "authenticated", future)), wantErr: true},
		{name: "missing subject", token: sign(t, key, valid("", "authenticated", future)), wantErr: true},
		{name: "anonymous", token: sign(t, key, valid("user-1", "anon", future)), wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("VerifyToken() error = %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyToken() error = %v", err)
			}
			if claims.GetSubjectID() != tt.wantSub {
				t.Errorf("subject = %q, want %q", claims.GetSubjectID(), tt.wantSub)
			}
		})
	}
}

func TestNewJWTVerifier_EmptyURL(t *testing.T) {
	if _, err := NewJWTVerifier("", slog.Default()); err == nil {
		t.Fatal("expected error for empty JWKS URL")
	}
}
