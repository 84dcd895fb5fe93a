package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medifit/medifit-api/internal/domain"
	"github.com/medifit/medifit-api/pkg/auth"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

// CredentialVerifier checks a password attempt against a stored hash.
// The production implementation is bcrypt; tests substitute a cheap one.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type bcryptVerifier struct{}

func NewBcryptVerifier() CredentialVerifier {
	return bcryptVerifier{}
}

func (bcryptVerifier) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (bcryptVerifier) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type RegisterUserCommand struct {
	Username        string
	Password        string
	Role            domain.Role
	HospitalName    string
	HospitalAddress string
	PatientID       *uuid.UUID
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	verifier   CredentialVerifier
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, verifier CredentialVerifier, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		verifier:   verifier,
		log:        log,
		now:        time.Now,
	}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Register(ctx context.Context, cmd *RegisterUserCommand) (*domain.User, error) {
	var errs []string
	if strings.TrimSpace(cmd.Username) == "" {
		errs = append(errs, "username is required")
	}
	if len(cmd.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if cmd.Role != "" && !cmd.Role.IsValid() {
		errs = append(errs, "role is invalid")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := s.verifier.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role := cmd.Role
	if role == "" {
		role = domain.RoleUser
	}

	u := &domain.User{
		Username:        strings.TrimSpace(cmd.Username),
		PasswordHash:    hash,
		Role:            role,
		HospitalName:    cmd.HospitalName,
		HospitalAddress: cmd.HospitalAddress,
		PatientID:       cmd.PatientID,
		IsActive:        true,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		s.log.Error("failed to register user", zap.Error(err))
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.log.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
	)

	return u, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, *domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Burn a comparable amount of CPU so response time does not reveal
		// whether the username exists.
		_, _ = s.verifier.Hash(password)
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	if !s.verifier.Verify(user.PasswordHash, password) {
		s.log.Warn("failed login attempt", zap.String("username", username))
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, s.now()); err != nil {
		s.log.Warn("failed to record login time", zap.Error(err))
	}

	pair, err := s.jwtManager.GenerateTokenPair(s.claimsFor(user))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return pair, user, nil
}

// Refresh issues a new token pair given a valid refresh token. The user
// must still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(s.claimsFor(user))
}

// ChangePassword replaces a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < 8 {
		return &ValidationError{Fields: []string{"password must be at least 8 characters"}}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.verifier.Verify(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := s.verifier.Hash(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.log.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		PatientID: u.PatientID,
	}
}
