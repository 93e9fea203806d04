package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"skillpath-backend/middleware"
	"skillpath-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// Register creates a user with a bcrypt-hashed password and returns it with
// a signed token.
func (s *AuthService) Register(name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, "", fmt.Errorf("name and email are required")
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("password must be at least 6 characters")
	}

	var existing models.User
	if err := s.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, "", fmt.Errorf("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Password:     string(hashed),
		LastActiveAt: time.Now(),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Printf("✅ Registered user %s (%s)", user.Name, user.Email)
	return &user, token, nil
}

// Login verifies credentials and returns the user with a signed token.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// SignToken issues a 30-day HS256 token with the user ID as subject.
func (s *AuthService) SignToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(middleware.JWTSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureDemoUser creates the demo account on first boot.
func (s *AuthService) EnsureDemoUser() {
	var user models.User
	err := s.DB.Where("email = ?", "demo@example.com").First(&user).Error
	if err != gorm.ErrRecordNotFound {
		return
	}
	if _, _, err := s.Register("Demo User", "demo@example.com", "demo123"); err != nil {
		log.Printf("⚠️ Failed to create demo user: %v", err)
		return
	}
	log.Println("✅ Demo user created")
}
