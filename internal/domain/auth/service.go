// Package auth provides operator authentication for the back office.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tillbook/internal/core/apperror"
	appctx "tillbook/internal/core/context"
	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour, // 7 days
	}
}

// Service provides operator authentication logic.
type Service struct {
	operatorRepo OperatorRepository
	tokenRepo    TokenRepository
	txManager    tx.Manager
	jwtService   *JWTService
	config       ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	operatorRepo OperatorRepository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		operatorRepo: operatorRepo,
		tokenRepo:    tokenRepo,
		txManager:    txManager,
		jwtService:   jwtService,
		config:       config,
	}
}

// Register creates a new operator account. Only supervisors may create
// accounts; the seed command bypasses this by registering before any
// operator context exists.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Operator, error) {
	if op := appctx.GetOperator(ctx); op != nil && op.Role != appctx.RoleSupervisor {
		return nil, apperror.NewForbidden("only supervisors can create operator accounts")
	}

	if req.Login == "" {
		return nil, apperror.NewValidation("login is required").WithDetail("field", "login")
	}

	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	role := req.Role
	if role == "" {
		role = appctx.RoleOperator
	}

	exists, err := s.operatorRepo.Exists(ctx, req.Login)
	if err != nil {
		return nil, fmt.Errorf("check login exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("login already taken").WithDetail("login", req.Login)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	op := NewOperator(req.Login, req.Name, string(passwordHash), role)
	if err := op.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.operatorRepo.Create(ctx, op)
	})
	if err != nil {
		return nil, fmt.Errorf("create operator: %w", err)
	}

	logger.Info(ctx, "operator registered",
		"operator_id", op.ID,
		"login", op.Login,
		"role", op.Role)

	return op, nil
}

// Login authenticates an operator and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *Operator, error) {
	op, err := s.operatorRepo.GetByLogin(ctx, creds.Login)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := op.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(creds.Password)); err != nil {
		op.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		_ = s.operatorRepo.Update(ctx, op)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	tokens, err := s.generateTokenPair(ctx, op)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	op.RecordSuccessfulLogin()
	_ = s.operatorRepo.Update(ctx, op)

	logger.Info(ctx, "operator logged in",
		"operator_id", op.ID,
		"login", op.Login)

	return tokens, op, nil
}

// RefreshToken refreshes access token using refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	token, err := s.tokenRepo.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}

	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	op, err := s.operatorRepo.GetByID(ctx, token.OperatorID)
	if err != nil {
		return nil, apperror.NewUnauthorized("operator not found")
	}

	if err := op.CanLogin(); err != nil {
		return nil, err
	}

	// Rotate: the old refresh token dies with the refresh.
	_ = s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed")

	return s.generateTokenPair(ctx, op)
}

// Logout revokes all the operator's refresh tokens.
func (s *Service) Logout(ctx context.Context, operatorID id.ID) error {
	return s.tokenRepo.RevokeAllOperatorTokens(ctx, operatorID, "logout")
}

// GetOperatorByID retrieves an operator account.
func (s *Service) GetOperatorByID(ctx context.Context, operatorID id.ID) (*Operator, error) {
	op, err := s.operatorRepo.GetByID(ctx, operatorID)
	if err != nil {
		return nil, apperror.NewNotFound("operator", operatorID.String())
	}
	return op, nil
}

// ListOperators lists operators with filtering.
func (s *Service) ListOperators(ctx context.Context, filter OperatorFilter) ([]Operator, int, error) {
	return s.operatorRepo.List(ctx, filter)
}

// SetActive enables or disables an operator account.
func (s *Service) SetActive(ctx context.Context, operatorID id.ID, active bool) error {
	if !appctx.IsSupervisor(ctx) {
		return apperror.NewForbidden("only supervisors can change account status")
	}

	op, err := s.operatorRepo.GetByID(ctx, operatorID)
	if err != nil {
		return apperror.NewNotFound("operator", operatorID.String())
	}

	op.IsActive = active
	if err := s.operatorRepo.Update(ctx, op); err != nil {
		return fmt.Errorf("update operator: %w", err)
	}

	if !active {
		_ = s.tokenRepo.RevokeAllOperatorTokens(ctx, operatorID, "account disabled")
	}

	logger.Info(ctx, "operator status changed",
		"operator_id", operatorID,
		"active", active)

	return nil
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, op *Operator) (*TokenPair, error) {
	sessionID := id.New().String()

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(
		op.ID.String(), op.Login, op.Name, op.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshTokenHash := hashToken(refreshTokenRaw)

	refreshToken := &RefreshToken{
		ID:         id.New(),
		OperatorID: op.ID,
		TokenHash:  refreshTokenHash,
		ExpiresAt:  time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt:  time.Now(),
	}

	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
