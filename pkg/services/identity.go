package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cofounder/models"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
	tokenstore "cofounder/pkg/token"
	"cofounder/pkg/utils"
)

const minPasswordLen = 8

// Claims is what a verified session token tells us about the caller.
type Claims struct {
	UserID    string
	JTI       string
	ExpiresAt time.Time
}

// IdentityService signs users up and in, and issues, verifies and revokes session tokens.
type IdentityService struct {
	users   store.UserRepo
	revoked tokenstore.RevocationStore
	secret  []byte
	ttl     time.Duration
	log     *logger.Logger
	now     func() time.Time
}

func NewIdentityService(users store.UserRepo, revoked tokenstore.RevocationStore, secret string, ttl time.Duration, log *logger.Logger) *IdentityService {
	return &IdentityService{
		users:   users,
		revoked: revoked,
		secret:  []byte(secret),
		ttl:     ttl,
		log:     log.With("service", "Identity"),
		now:     time.Now,
	}
}

func (s *IdentityService) TTL() time.Duration { return s.ttl }

func (s *IdentityService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	// password validation: at least one letter and one number
	if len(password) < minPasswordLen || !utils.HasLetter(password) || !utils.HasNumber(password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters and contain a letter and a number", ErrInvalidInput, minPasswordLen)
	}
	exists, err := s.users.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}
	user := &models.User{ID: uuid.NewString(), Email: email}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, nil, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info("User signed up", "user_id", user.ID)
	return user, nil
}

// SignIn checks credentials. Unknown emails and wrong passwords both yield ErrUnauthorized.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, nil, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Issue signs an HS256 token for userID with a random jti.
func (s *IdentityService) Issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token. Any problem with the token itself yields ErrUnauthorized;
// other errors come from the revocation store.
func (s *IdentityService) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &rc, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if rc.Subject == "" {
		return nil, ErrUnauthorized
	}
	revoked, err := s.revoked.IsRevoked(ctx, rc.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthorized
	}
	return &Claims{UserID: rc.Subject, JTI: rc.ID, ExpiresAt: rc.ExpiresAt.Time}, nil
}

// SignOut revokes the token until its natural expiry.
func (s *IdentityService) SignOut(ctx context.Context, claims *Claims) error {
	if err := s.revoked.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return err
	}
	s.log.Info("User signed out", "user_id", claims.UserID)
	return nil
}

func (s *IdentityService) User(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, nil, id)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
