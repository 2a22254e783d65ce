package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"coding-edu-platform/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

type AuthService struct {
	DB          *gorm.DB
	Progression *ProgressionService
	Secret      []byte
	TokenTTL    time.Duration
	BcryptCost  int
}

func NewAuthService(db *gorm.DB, progression *ProgressionService, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		DB:          db,
		Progression: progression,
		Secret:      []byte(secret),
		TokenTTL:    ttl,
		BcryptCost:  bcrypt.DefaultCost,
	}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// normalize folds case so "Ada" and "ada" are the same account.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = normalize(username)
	email = normalize(email)
	if len(username) < 3 || len(username) > 32 {
		return nil, fmt.Errorf("username must be 3-32 characters: %w", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		XP:           0,
		Level:        1,
	}
	conflict := fmt.Errorf("username or email already registered: %w", ErrConflict)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Unscoped().
			Where("username = ? OR email = ?", username, email).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return conflict
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("👤 [AUTH] Registered %s (%s)", user.Username, user.ID)
	return s.issue(&user)
}

// Login accepts a username or an email. A successful login also repairs the
// stored level if it drifted from XP.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = normalize(identifier)
	invalid := fmt.Errorf("invalid credentials: %w", ErrUnauthorized)

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid
			}
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return invalid
		}

		if err := s.Progression.repairLevel(tx, user.ID); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("last_login_at", time.Now()).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", user.ID).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	expiresAt := time.Now().Add(s.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

// ParseToken validates an HS256 token and returns the user id it was issued for.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject: %w", ErrUnauthorized)
	}
	return sub, nil
}
