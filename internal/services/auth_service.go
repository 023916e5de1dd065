package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/internal/utils"
	"github.com/stayease/pg-management-backend/pkg/jwt"
	"github.com/stayease/pg-management-backend/pkg/mailer"
)

// AuthService implements registration, login and account management for
// both roles. Passwords are stored as bcrypt hashes; logins are audited
// with the parsed device information.
type AuthService struct {
	userRepo   *database.UserRepository
	jwtService *jwt.Service
	mail       mailer.Sender
	logger     *logrus.Logger
	bcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *database.UserRepository,
	jwtService *jwt.Service,
	mail mailer.Sender,
	logger *logrus.Logger,
	bcryptCost int,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		mail:       mail,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user account and sends a welcome email
func (s *AuthService) Register(username, email, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrValidation)
	}
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if err := checkPasswordStrength(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(username, email, string(hash), role)
	if err != nil {
		return nil, err
	}

	if err := s.mail.Send(email, "Welcome to StayEase",
		fmt.Sprintf("Hi %s,\n\nYour account has been created. Welcome!", username)); err != nil {
		s.logger.WithError(err).Warn("Welcome email failed")
	}

	return user, nil
}

// Login verifies credentials and issues a JWT. The caller's user agent is
// parsed and logged for the device audit trail.
func (s *AuthService) Login(email, password, userAgent string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	device := utils.ParseUserAgent(userAgent)
	s.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"role":        user.Role,
		"device_type": device.DeviceType,
		"os":          device.OS,
		"browser":     device.Browser,
		"is_bot":      device.IsBot,
	}).Info("User logged in")

	return token, user, nil
}

// GetAccount retrieves the caller's own account
func (s *AuthService) GetAccount(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return user, nil
}

// EditUser updates the caller's own profile. An empty password keeps the
// current one.
func (s *AuthService) EditUser(userID uuid.UUID, username, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	if username != "" {
		user.Username = strings.TrimSpace(username)
	}
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, fmt.Errorf("%w: email already registered", ErrValidation)
			}
			user.Email = email
		}
	}

	passwordHash := user.PasswordHash
	if password != "" {
		if err := checkPasswordStrength(password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hash)
	}

	updated, err := s.userRepo.Update(user.ID, user.Username, user.Email, passwordHash)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	return updated, nil
}

// checkPasswordStrength requires 8+ characters with at least one letter and
// one digit.
func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain a letter and a digit", ErrValidation)
	}

	return nil
}
