package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tokenvault/backend/internal/config"
	"github.com/tokenvault/backend/internal/domain"
	"github.com/tokenvault/backend/internal/queue/client"
	"github.com/tokenvault/backend/internal/queue/task"
	"github.com/tokenvault/backend/internal/repository"
	"github.com/tokenvault/backend/pkg/auth"
	"github.com/tokenvault/backend/pkg/logger"
	"github.com/tokenvault/backend/pkg/otp"
)

type authService struct {
	userRepository    repository.Users
	sessionRepository repository.Sessions
	codeRepository    repository.VerificationCodes
	tokenManager      auth.TokenManager
	otpGenerator      otp.Generator
	authConfig        config.AuthConfig
}

func newAuthService(userRepository repository.Users,
	sessionRepository repository.Sessions,
	codeRepository repository.VerificationCodes,
	tokenManager auth.TokenManager,
	otpGenerator otp.Generator,
	authConfig config.AuthConfig,
) *authService {
	return &authService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		codeRepository:    codeRepository,
		tokenManager:      tokenManager,
		otpGenerator:      otpGenerator,
		authConfig:        authConfig,
	}
}

// RequestCode creates the user on first contact, retires any live codes of
// the purpose and issues a fresh one. The code is handed to the email queue;
// delivery failures never fail the request.
func (s *authService) RequestCode(ctx context.Context, email string, purpose domain.CodePurpose) (*domain.VerificationCode, error) {
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepository.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = s.createUser(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user for code request failed: %w", err)
	}

	if err := s.codeRepository.InvalidateActive(ctx, user.ID, purpose); err != nil {
		return nil, fmt.Errorf("invalidate previous codes failed: %w", err)
	}

	codeID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate code id failed: %w", err)
	}

	code := &domain.VerificationCode{
		ID:        codeID,
		UserID:    user.ID,
		Code:      s.otpGenerator.RandomCode(s.authConfig.VerificationCodeLength),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.authConfig.VerificationCodeTTL),
	}

	if err := s.codeRepository.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("create verification code failed: %w", err)
	}

	s.enqueueAuthEmail(ctx, task.AuthEmailKindLoginCode, user, code.Code)

	return code, nil
}

func (s *authService) createUser(ctx context.Context, email string) (*domain.User, error) {
	userID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id failed: %w", err)
	}

	newUser := &domain.User{
		ID:    userID,
		Email: email,
	}

	err = s.userRepository.Create(ctx, newUser)
	if errors.Is(err, domain.ErrDuplicateEntry) {
		// Lost a create race to a concurrent request for the same email.
		return s.userRepository.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user failed: %w", err)
	}

	return newUser, nil
}

// VerifyCode exchanges a valid one-time code for a session and a signed
// bearer token. An EMAIL_VERIFICATION code additionally marks the user
// verified and applies the supplied display name.
func (s *authService) VerifyCode(ctx context.Context, email string, code string, displayName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepository.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	vc, err := s.codeRepository.GetActive(ctx, user.ID, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("get active code failed: %w", err)
	}

	err = s.codeRepository.Consume(ctx, vc.ID)
	if errors.Is(err, domain.ErrNoRowsAffected) {
		// Someone consumed the same code first.
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("consume code failed: %w", err)
	}

	if vc.Purpose == domain.PurposeEmailVerification {
		if err := s.userRepository.SetVerified(ctx, user.ID, displayName); err != nil {
			return nil, fmt.Errorf("mark user verified failed: %w", err)
		}
		user.Verified = true
		if displayName != "" {
			user.DisplayName.String = displayName
			user.DisplayName.Valid = true
		}

		s.enqueueAuthEmail(ctx, task.AuthEmailKindWelcome, user, "")
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *authService) createSession(ctx context.Context, user *domain.User) (string, error) {
	sessionID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate session id failed: %w", err)
	}

	session := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Token:     uuid.New(),
		ExpiresAt: time.Now().Add(s.authConfig.SessionTTL),
	}

	if err := s.sessionRepository.Create(ctx, session); err != nil {
		return "", fmt.Errorf("create session failed: %w", err)
	}

	token, err := s.tokenManager.NewSessionToken(user.ID, session.ID, user.Email, s.authConfig.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("sign session token failed: %w", err)
	}

	return token, nil
}

// Authenticate resolves a bearer token to the current user. The user is read
// live from storage so wallet links and verification flips show up without a
// token re-issue.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenManager.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionID, err := claims.Session()
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepository.GetByID(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session failed: %w", err)
	}

	if session.Expired(time.Now()) {
		return nil, ErrInvalidSession
	}

	user, err := s.userRepository.GetByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session user failed: %w", err)
	}

	return user, nil
}

// Logout drops the token's session. Malformed tokens and already-gone
// sessions are not errors from the caller's perspective.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenManager.Parse(token)
	if err != nil {
		return nil
	}

	sessionID, err := claims.Session()
	if err != nil {
		return nil
	}

	if err := s.sessionRepository.DeleteByID(ctx, sessionID); err != nil {
		logger.Error("delete session on logout failed", zap.Error(err))
	}

	return nil
}

func (s *authService) LinkWallet(ctx context.Context, userID uuid.UUID, walletAddress string) (*domain.PublicUser, error) {
	if !strings.HasPrefix(walletAddress, "0x") || !common.IsHexAddress(walletAddress) {
		return nil, ErrInvalidWallet
	}

	err := s.userRepository.UpdateWalletAddress(ctx, userID, walletAddress)
	if errors.Is(err, domain.ErrDuplicateEntry) {
		return nil, ErrWalletTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update wallet address failed: %w", err)
	}

	user, err := s.userRepository.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user after wallet link failed: %w", err)
	}

	return user.Public(), nil
}

func (s *authService) enqueueAuthEmail(ctx context.Context, kind string, user *domain.User, code string) {
	t, err := task.NewSendAuthEmailTask(kind, user.Email, user.DisplayName.String, code)
	if err != nil {
		logger.Error("build auth email task failed", zap.Error(err), zap.String("kind", kind))
		return
	}

	cl := client.GetClient(ctx)
	if cl == nil {
		logger.Warn("queue client is not configured, dropping auth email", zap.String("kind", kind))
		return
	}

	if _, err := cl.EnqueueContext(ctx, t); err != nil {
		logger.Error("enqueue auth email failed", zap.Error(err), zap.String("kind", kind))
	}
}
