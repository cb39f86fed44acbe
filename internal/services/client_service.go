package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/internal/models"
	"github.com/diewo77/medicaments-api/validation"
)

// RegisterInput is the data needed to open a client account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Username *string
	Email    *string
}

// ClientService is the credential store: accounts, passwords and profiles.
type ClientService struct {
	db     *gorm.DB
	hasher auth.PasswordHasher
}

func NewClientService(db *gorm.DB, hasher auth.PasswordHasher) *ClientService {
	return &ClientService{db: db, hasher: hasher}
}

// Register creates a client with a hashed password. Role defaults to Client.
func (s *ClientService) Register(ctx context.Context, in RegisterInput) (*models.Client, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleClient
	}

	v := validation.Violations{}
	validation.Required("username", in.Username, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.OneOf("clientType", string(in.Role), models.RoleNames(), v)
	if !v.Empty() {
		return nil, invalid(v)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Client{}).
		Where("email = ? OR username = ?", in.Email, in.Username).
		Count(&count).Error; err != nil {
		return nil, storageErr("check existing client", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("email or username already in use: %w", ErrConflict)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	client := models.Client{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	// the unique indexes still catch a concurrent registration
	if err := db.Create(&client).Error; err != nil {
		return nil, storageErr("create client", err)
	}
	return &client, nil
}

// Authenticate returns the active client matching email and password.
// Every failure yields the same ErrAuth so callers cannot tell which part was wrong.
func (s *ClientService) Authenticate(ctx context.Context, email, password string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuth
	}
	if err != nil {
		return nil, storageErr("find client", err)
	}
	if err := s.hasher.Compare(client.PasswordHash, password); err != nil {
		return nil, ErrAuth
	}
	if !client.Active {
		return nil, ErrAuth
	}
	return &client, nil
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, clientID uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, clientID).Error; err != nil {
		return nil, storageErr("get client", err)
	}
	return &client, nil
}

// IsActive reports whether the client exists and is active.
func (s *ClientService) IsActive(ctx context.Context, clientID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ? AND active = ?", clientID, true).
		Count(&count).Error
	if err != nil {
		return false, storageErr("check client", err)
	}
	return count > 0, nil
}

// ChangePassword replaces the password hash once the current password is
// confirmed. A wrong current password is ErrAuth.
func (s *ClientService) ChangePassword(ctx context.Context, clientID uint, current, next string) error {
	v := validation.Violations{}
	validation.Required("currentPassword", current, v)
	validation.Required("newPassword", next, v)
	if !v.Empty() {
		return invalid(v)
	}

	client, err := s.Get(ctx, clientID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(client.PasswordHash, current); err != nil {
		return fmt.Errorf("change password: %w", ErrAuth)
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(client).Update("password_hash", hash).Error; err != nil {
		return storageErr("update password", err)
	}
	return nil
}

// UpdateProfile applies a partial update of username and email.
func (s *ClientService) UpdateProfile(ctx context.Context, clientID uint, in ProfileInput) (*models.Client, error) {
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	v := validation.Violations{}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		validation.Required("username", username, v)
		if username != client.Username {
			updates["username"] = username
		}
	}
	if in.Email != nil {
		email := models.NormalizeEmail(*in.Email)
		validation.Required("email", email, v)
		validation.Email("email", email, v)
		if email != client.Email {
			updates["email"] = email
		}
	}
	if !v.Empty() {
		return nil, invalid(v)
	}
	if len(updates) == 0 {
		return client, nil
	}

	db := s.db.WithContext(ctx)
	taken := db.Model(&models.Client{}).Where("id <> ?", clientID)
	switch {
	case updates["username"] != nil && updates["email"] != nil:
		taken = taken.Where("username = ? OR email = ?", updates["username"], updates["email"])
	case updates["username"] != nil:
		taken = taken.Where("username = ?", updates["username"])
	default:
		taken = taken.Where("email = ?", updates["email"])
	}
	var count int64
	if err := taken.Count(&count).Error; err != nil {
		return nil, storageErr("check profile uniqueness", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("email or username already in use: %w", ErrConflict)
	}

	if err := db.Model(client).Updates(updates).Error; err != nil {
		return nil, storageErr("update profile", err)
	}
	return s.Get(ctx, clientID)
}
