package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-voice/internal/data/repos"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

// Identity is the resolved account behind a voice connection. It does not
// change for the lifetime of the connection.
type Identity struct {
	ID          uuid.UUID
	DisplayName string
	Active      bool
}

type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}

// AccessClaims is the token payload. Older tokens carry the id in "user_id";
// newer ones use the registered subject.
type AccessClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

type jwtIdentityResolver struct {
	db     *gorm.DB
	log    *logger.Logger
	users  repos.UserRepo
	secret []byte
}

func NewIdentityResolver(db *gorm.DB, log *logger.Logger, users repos.UserRepo, jwtSecretKey string) IdentityResolver {
	return &jwtIdentityResolver{
		db:     db,
		log:    log.With("service", "IdentityResolver"),
		users:  users,
		secret: []byte(jwtSecretKey),
	}
}

func (r *jwtIdentityResolver) Resolve(ctx context.Context, credential string) (Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, apierr.New(apierr.CodeUnauthorized, "missing credential")
	}
	if len(r.secret) == 0 {
		return Identity{}, apierr.New(apierr.CodeConfiguration, "token verification key is not configured")
	}

	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(
		credential,
		claims,
		func(t *jwt.Token) (interface{}, error) { return r.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		msg := "invalid credential"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "credential expired"
		}
		return Identity{}, apierr.Wrap(apierr.CodeUnauthorized, err, msg)
	}

	raw := claims.UserID
	if raw == "" {
		raw = claims.Subject
	}
	userID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || userID == uuid.Nil {
		return Identity{}, apierr.New(apierr.CodeUnauthorized, "credential has no user id")
	}

	rows, err := r.users.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if len(rows) == 0 {
		return Identity{}, apierr.New(apierr.CodeUnauthorized, "unknown account")
	}
	u := rows[0]
	if !u.IsActive {
		return Identity{}, apierr.New(apierr.CodeUnauthorized, "account is inactive")
	}
	return Identity{ID: u.ID, DisplayName: u.DisplayName(), Active: true}, nil
}

// SignAccessToken mints an HS256 token the resolver accepts.
func SignAccessToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
