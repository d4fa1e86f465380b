package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/token"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpLength = 6
	otpTTL    = 5 * time.Minute

	minPasswordLength = 8
)

// authService implements AuthService.
type authService struct {
	userRepo   repository.UserRepository
	tokens     *token.Provider
	dispatcher *notify.Dispatcher
	logger     zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *token.Provider,
	dispatcher *notify.Dispatcher,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		dispatcher: dispatcher,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account from a password registration and
// returns an issued token pair.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if exists {
		return nil, model.NewDuplicate(fmt.Sprintf("Email %s is already registered", email))
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		exists, err := s.userRepo.ExistsByPhone(ctx, *req.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
		if exists {
			return nil, model.NewDuplicate("Phone number is already registered")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PhoneNumber:  req.PhoneNumber,
		Role:         model.RoleCustomer,
		Status:       model.UserActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("user registered")

	s.dispatcher.Send(user.Email, "Welcome to Storefront",
		fmt.Sprintf("Hi %s,\n\nYour account has been created.\n", user.FullName()))

	return s.issueTokens(ctx, user)
}

// Login verifies email/password credentials.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.activeUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("email", user.Email).Msg("password mismatch")
		return nil, model.NewAccessDenied("Invalid email or password")
	}

	return s.issueTokens(ctx, user)
}

// RequestOTP generates a one-time code and emails it. Unknown emails
// succeed silently so account existence is not leaked.
func (s *authService) RequestOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to request OTP: %w", err)
	}
	if user == nil || user.Status != model.UserActive {
		s.logger.Debug().Str("email", email).Msg("OTP requested for unknown or inactive account")
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate OTP")
		return fmt.Errorf("failed to request OTP: %w", err)
	}

	expiresAt := time.Now().Add(otpTTL)
	user.OTP = &code
	user.OTPExpiresAt = &expiresAt

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to request OTP: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("OTP issued")

	s.dispatcher.Send(user.Email, "Your login code",
		fmt.Sprintf("Hi %s,\n\nYour one-time login code is %s. It expires in 5 minutes.\n", user.FullName(), code))

	return nil
}

// LoginWithOTP verifies a one-time code previously requested for the
// email. The code is single use.
func (s *authService) LoginWithOTP(ctx context.Context, req *model.LoginWithOTPRequest) (*model.AuthResponse, error) {
	user, err := s.activeUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if user.OTP == nil || user.OTPExpiresAt == nil ||
		*user.OTP != req.OTP || time.Now().After(*user.OTPExpiresAt) {
		s.logger.Warn().Str("email", user.Email).Msg("invalid or expired OTP")
		return nil, model.NewAccessDenied("Invalid or expired one-time code")
	}

	user.OTP = nil
	user.OTPExpiresAt = nil
	user.EmailVerified = true

	return s.issueTokens(ctx, user)
}

// RequestRegistrationOTP reserves the email by creating an inactive
// placeholder account and emails a one-time code to complete the
// registration.
func (s *authService) RequestRegistrationOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return model.NewValidation(map[string]string{"email": "A valid email address is required"})
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to request registration OTP: %w", err)
	}
	if existing != nil && existing.Status == model.UserActive {
		return model.NewDuplicate(fmt.Sprintf("Email %s is already registered", email))
	}

	code, err := generateOTP()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate OTP")
		return fmt.Errorf("failed to request registration OTP: %w", err)
	}

	expiresAt := time.Now().Add(otpTTL)

	user := existing
	if user == nil {
		// The placeholder carries an unguessable password hash so the
		// reserved email cannot be logged into before activation.
		hash, err := bcrypt.GenerateFromPassword([]byte(model.NewTransactionID()), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to hash placeholder password")
			return fmt.Errorf("failed to request registration OTP: %w", err)
		}

		user = &model.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         model.RoleCustomer,
			Status:       model.UserInactive,
			OTP:          &code,
			OTPExpiresAt: &expiresAt,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to request registration OTP: %w", err)
		}
	} else {
		user.OTP = &code
		user.OTPExpiresAt = &expiresAt
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to request registration OTP: %w", err)
		}
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("registration OTP issued")

	s.dispatcher.Send(email, "Confirm your email",
		fmt.Sprintf("Your registration code is %s. It expires in 5 minutes.\n", code))

	return nil
}

// RegisterWithOTP completes the registration started by
// RequestRegistrationOTP and activates the account.
func (s *authService) RegisterWithOTP(ctx context.Context, req *model.RegisterWithOTPRequest) (*model.AuthResponse, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}
	if req.OTP == "" {
		fields["otp"] = "One-time code is required"
	}
	if len(fields) > 0 {
		return nil, model.NewValidation(fields)
	}

	email := normalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if user != nil && user.Status == model.UserActive {
		return nil, model.NewDuplicate(fmt.Sprintf("Email %s is already registered", email))
	}
	if user == nil {
		return nil, model.NewIllegalState("Request a registration code before registering")
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		exists, err := s.userRepo.ExistsByPhone(ctx, *req.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
		if exists {
			return nil, model.NewDuplicate("Phone number is already registered")
		}
	}

	if user.OTP == nil || user.OTPExpiresAt == nil ||
		*user.OTP != req.OTP || time.Now().After(*user.OTPExpiresAt) {
		s.logger.Warn().Str("email", email).Msg("invalid or expired registration OTP")
		return nil, model.NewAccessDenied("Invalid or expired one-time code")
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.PhoneNumber = req.PhoneNumber
	user.Status = model.UserActive
	user.EmailVerified = true
	user.OTP = nil
	user.OTPExpiresAt = nil

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("user registered with OTP")

	s.dispatcher.Send(user.Email, "Welcome to Storefront",
		fmt.Sprintf("Hi %s,\n\nYour account has been created.\n", user.FullName()))

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, model.NewAccessDenied("Invalid refresh token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, model.NewAccessDenied("Invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh tokens: %w", err)
	}
	if user == nil || user.Status != model.UserActive {
		return nil, model.NewAccessDenied("Account is not active")
	}

	// The presented token must be the one most recently issued.
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		s.logger.Warn().Int64("user_id", user.ID).Msg("stale refresh token presented")
		return nil, model.NewAccessDenied("Invalid refresh token")
	}

	return s.issueTokens(ctx, user)
}

// Logout invalidates the stored refresh token.
func (s *authService) Logout(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	if user == nil {
		return model.NewNotFound(fmt.Sprintf("User %d not found", userID))
	}

	user.RefreshToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("user logged out")

	return nil
}

// issueTokens signs a pair, persists the refresh token and the login
// timestamp, and builds the auth response.
func (s *authService) issueTokens(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue tokens")
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	now := time.Now()
	user.RefreshToken = &pair.RefreshToken
	user.LastLoginAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &model.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		User:         model.NewUserResponse(user),
	}, nil
}

func (s *authService) activeUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.NewAccessDenied("Invalid email or password")
	}
	if user.Status != model.UserActive {
		return nil, model.NewAccessDenied("Account is not active")
	}
	return user, nil
}

func (s *authService) validateRegisterRequest(req *model.RegisterRequest) error {
	fields := map[string]string{}

	if !strings.Contains(req.Email, "@") {
		fields["email"] = "A valid email address is required"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(req.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}

	if len(fields) > 0 {
		return model.NewValidation(fields)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP returns a random numeric code of otpLength digits.
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", otpLength, n), nil
}
