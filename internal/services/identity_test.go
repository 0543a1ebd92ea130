package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-voice/internal/data/repos"
	"github.com/yungbote/neurobridge-voice/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
)

const testSecret = "test-secret"

func TestIdentityResolver(t *testing.T) {
	db := testutil.Isolated(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	resolver := NewIdentityResolver(db, log, repos.NewUserRepo(db, log), testSecret)

	active := testutil.SeedUser(t, ctx, db, "active@example.com")
	inactive := testutil.SeedUser(t, ctx, db, "inactive@example.com")
	if err := repos.NewUserRepo(db, log).SetActive(dbctx.Context{Ctx: ctx, Tx: db}, inactive.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	mustSign := func(secret string, id uuid.UUID, ttl time.Duration) string {
		t.Helper()
		tok, err := SignAccessToken(secret, id, ttl)
		if err != nil {
			t.Fatalf("SignAccessToken: %v", err)
		}
		return tok
	}

	t.Run("valid", func(t *testing.T) {
		id, err := resolver.Resolve(ctx, mustSign(testSecret, active.ID, time.Hour))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if id.ID != active.ID || !id.Active || id.DisplayName != "Test Student" {
			t.Fatalf("unexpected identity: %+v", id)
		}
	})

	t.Run("subject only", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   active.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if _, err := resolver.Resolve(ctx, tok); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	})

	unauthorized := map[string]string{
		"empty":        "",
		"malformed":    "not-a-token",
		"expired":      mustSign(testSecret, active.ID, -time.Minute),
		"wrong key":    mustSign("other-secret", active.ID, time.Hour),
		"inactive":     mustSign(testSecret, inactive.ID, time.Hour),
		"unknown user": mustSign(testSecret, uuid.New(), time.Hour),
	}
	for name, tok := range unauthorized {
		t.Run(name, func(t *testing.T) {
			_, err := resolver.Resolve(ctx, tok)
			if !errors.Is(err, apierr.ErrUnauthorized) {
				t.Fatalf("want Unauthorized, got %v", err)
			}
		})
	}

	t.Run("no expiry", func(t *testing.T) {
		claims := AccessClaims{UserID: active.ID.String()}
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if _, err := resolver.Resolve(ctx, tok); !errors.Is(err, apierr.ErrUnauthorized) {
			t.Fatalf("want Unauthorized for token without exp, got %v", err)
		}
	})
}
