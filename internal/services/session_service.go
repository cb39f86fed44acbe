package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/gate"
	"github.com/diewo77/medicaments-api/internal/models"
)

// Session is the result of a successful login.
type Session struct {
	Client *models.Client
	Token  string
	Claims *auth.Claims
}

// SessionService issues and revokes bearer tokens.
type SessionService struct {
	db      *gorm.DB
	clients *ClientService
	tokens  auth.Tokens
	active  *gate.CachedLookup[uint, bool]
	now     func() time.Time
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithClientStatusCache caches the per-request "is this client still active"
// lookup for ttl. Revocation checks are never cached.
func WithClientStatusCache(ttl time.Duration) SessionOption {
	return func(s *SessionService) {
		s.active = gate.NewCachedLookup[uint, bool](s.clients.IsActive, ttl)
	}
}

func NewSessionService(db *gorm.DB, clients *ClientService, tokens auth.Tokens, opts ...SessionOption) *SessionService {
	s := &SessionService{db: db, clients: clients, tokens: tokens, now: time.Now}
	s.active = gate.NewCachedLookup[uint, bool](clients.IsActive, 0)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates the client and issues a token for it.
func (s *SessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	client, err := s.clients.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, claims, err := s.tokens.Issue(client.ID, client.Email, string(client.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Client: client, Token: token, Claims: claims}, nil
}

// Logout revokes the token the claims came from. Revoking twice is harmless.
// Entries whose token has expired anyway are purged on the way.
func (s *SessionService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return fmt.Errorf("logout: %w", ErrInvalidSession)
	}
	expires := s.now().Add(auth.TokenValidity)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		revoked := models.RevokedToken{JTI: claims.ID, ClientID: claims.ClientID, ExpiresAt: expires}
		err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
			Create(&revoked).Error
		if err != nil {
			return storageErr("revoke token", err)
		}
		if err := tx.Where("expires_at < ?", s.now()).Delete(&models.RevokedToken{}).Error; err != nil {
			return storageErr("purge revoked tokens", err)
		}
		return nil
	})
}

// IsRevoked reports whether the token with id jti was logged out.
func (s *SessionService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	if err != nil {
		return false, storageErr("check revoked token", err)
	}
	return count > 0, nil
}

// Verifier rejects revoked tokens and tokens of inactive or deleted clients.
// Storage failures reject the token.
func (s *SessionService) Verifier() auth.Verifier {
	return func(ctx context.Context, c *auth.Claims) bool {
		if revoked, err := s.IsRevoked(ctx, c.ID); err != nil || revoked {
			return false
		}
		active, err := s.active.Get(ctx, c.ClientID)
		return err == nil && active
	}
}
