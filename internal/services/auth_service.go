package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gameghor/internal/apperr"
	"gameghor/internal/config"
	"gameghor/internal/models"
	"gameghor/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and bearer token validation.
type AuthService struct {
	userRepo          repositories.UserRepository
	jwtSecret         []byte
	tokenTTL          time.Duration
	minPasswordLength int
	adminEmails       map[string]bool
	validate          *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg config.AuthConfig) *AuthService {
	adminEmails := make(map[string]bool, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		adminEmails[normalizeEmail(email)] = true
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:          userRepo,
		jwtSecret:         []byte(cfg.JWTSecret),
		tokenTTL:          ttl,
		minPasswordLength: cfg.MinPasswordLength,
		adminEmails:       adminEmails,
		validate:          newValidator(),
	}
}

// Register creates an account and logs it in.
func (s *AuthService) Register(in models.RegisterInput) (models.Identity, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return models.Identity{}, err
	}
	if len(in.Password) < s.minPasswordLength {
		return models.Identity{}, apperr.Validation("password must be at least %d characters", s.minPasswordLength)
	}

	user, err := s.createUser(in.Name, in.Email, in.Password, s.adminEmails[in.Email])
	if err != nil {
		return models.Identity{}, err
	}
	log.Printf("Registered user %s (admin=%t)", user.Email, user.IsAdmin)
	return s.issue(user)
}

// CreateAdmin creates an account with admin privileges.
func (s *AuthService) CreateAdmin(name, email, password string) (*models.User, error) {
	in := models.RegisterInput{Name: strings.TrimSpace(name), Email: normalizeEmail(email), Password: password}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	return s.createUser(in.Name, in.Email, in.Password, true)
}

// Promote grants admin privileges to an existing account.
func (s *AuthService) Promote(email string) error {
	return s.userRepo.SetAdmin(normalizeEmail(email), true)
}

func (s *AuthService) createUser(name, email, password string, isAdmin bool) (*models.User, error) {
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, apperr.Auth("email '%s' already registered", email)
	} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, Password: string(hashedPassword), IsAdmin: isAdmin}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns their identity with a fresh token.
func (s *AuthService) Login(in models.LoginInput) (models.Identity, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return models.Identity{}, err
	}

	user, err := s.userRepo.GetByEmail(in.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Identity{}, apperr.Auth("invalid credentials")
		}
		return models.Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return models.Identity{}, apperr.Auth("invalid credentials")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (models.Identity, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return models.IdentityFor(user, tokenString), nil
}

// ValidateToken parses a bearer token and returns the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return models.Identity{}, &apperr.Error{Kind: apperr.KindAuth, Detail: "invalid or expired token", Err: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, apperr.Auth("invalid or expired token")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return models.Identity{}, apperr.Auth("invalid or expired token")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return models.Identity{
		Token:   tokenString,
		UserID:  userID,
		Name:    name,
		Email:   email,
		IsAdmin: isAdmin,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
