package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ycwei/img2md/internal/models"
	"github.com/ycwei/img2md/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers every rejection on the token path: bad signature,
// expired token, malformed claims, or a subject that no longer exists.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims encode the token subject (username) and expiry. Nothing else goes in
// the token; the user record is resolved from the database on each request.
type Claims struct {
	jwt.RegisteredClaims
}

// Service hashes and verifies passwords and issues/resolves bearer tokens.
// Passwords are stored as bcrypt hashes (adaptive, salted by the algorithm).
type Service struct {
	Users  *repo.UserRepo
	Secret []byte
	TTL    time.Duration
}

func NewService(users *repo.UserRepo, secret []byte, ttl time.Duration) *Service {
	return &Service{Users: users, Secret: secret, TTL: ttl}
}

// HashPassword returns the bcrypt hash of plaintext.
func (s *Service) HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored bcrypt hash.
func (s *Service) VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IssueToken signs an HS256 JWT with the username as subject, expiring after TTL.
func (s *Service) IssueToken(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	})
	return token.SignedString(s.Secret)
}

// ResolveToken verifies the signature and expiry, then resolves the subject to
// an existing user. Every failure collapses to ErrInvalidToken so callers leak
// nothing about which check rejected the token.
func (s *Service) ResolveToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.Users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return user, nil
}
