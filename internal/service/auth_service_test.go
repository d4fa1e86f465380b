package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/token"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestTokenProvider() *token.Provider {
	return token.NewProvider("test-secret", 15*time.Minute, 24*time.Hour, zerolog.Nop())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	req := &model.RegisterRequest{
		Email:     "Jane.Doe@Example.com",
		Password:  "correct-horse",
		FirstName: "Jane",
		LastName:  "Doe",
	}

	mockUserRepo.On("ExistsByEmail", ctx, "jane.doe@example.com").Return(false, nil)
	mockUserRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 42
		}).
		Return(nil)
	mockUserRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	resp, err := service.Register(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(42), resp.User.ID)
	assert.Equal(t, "jane.doe@example.com", resp.User.Email)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)

	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	req := &model.RegisterRequest{
		Email:     "jane@example.com",
		Password:  "correct-horse",
		FirstName: "Jane",
		LastName:  "Doe",
	}

	mockUserRepo.On("ExistsByEmail", ctx, "jane@example.com").Return(true, nil)

	resp, err := service.Register(ctx, req)

	require.Error(t, err)
	assert.Nil(t, resp)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindDuplicate, domainErr.Kind)

	mockUserRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	tests := []struct {
		name  string
		req   *model.RegisterRequest
		field string
	}{
		{
			name:  "bad email",
			req:   &model.RegisterRequest{Email: "nope", Password: "correct-horse", FirstName: "A", LastName: "B"},
			field: "email",
		},
		{
			name:  "short password",
			req:   &model.RegisterRequest{Email: "a@b.com", Password: "short", FirstName: "A", LastName: "B"},
			field: "password",
		},
		{
			name:  "missing first name",
			req:   &model.RegisterRequest{Email: "a@b.com", Password: "correct-horse", LastName: "B"},
			field: "firstName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.Register(ctx, tt.req)

			require.Error(t, err)
			assert.Nil(t, resp)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.KindValidation, domainErr.Kind)
			assert.Contains(t, domainErr.Fields, tt.field)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash := hashPassword(t, "correct-horse")

	t.Run("success", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		user := &model.User{ID: 42, Email: "jane@example.com", PasswordHash: hash, Status: model.UserActive}
		mockUserRepo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
		mockUserRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		resp, err := service.Login(ctx, &model.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.AccessToken)
		require.NotNil(t, user.RefreshToken)
		assert.Equal(t, resp.RefreshToken, *user.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		user := &model.User{ID: 42, Email: "jane@example.com", PasswordHash: hash, Status: model.UserActive}
		mockUserRepo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)

		resp, err := service.Login(ctx, &model.LoginRequest{Email: "jane@example.com", Password: "wrong"})

		require.Error(t, err)
		assert.Nil(t, resp)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindAccessDenied, domainErr.Kind)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		mockUserRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

		resp, err := service.Login(ctx, &model.LoginRequest{Email: "ghost@example.com", Password: "whatever"})

		require.Error(t, err)
		assert.Nil(t, resp)
		// Unknown accounts and bad passwords read the same.
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("deleted account", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		user := &model.User{ID: 42, Email: "jane@example.com", PasswordHash: hash, Status: model.UserDeleted}
		mockUserRepo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)

		resp, err := service.Login(ctx, &model.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})

		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestAuthService_OTPFlow(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	user := &model.User{ID: 42, Email: "jane@example.com", Status: model.UserActive}
	mockUserRepo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
	mockUserRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	err := service.RequestOTP(ctx, "jane@example.com")
	require.NoError(t, err)

	require.NotNil(t, user.OTP)
	require.NotNil(t, user.OTPExpiresAt)
	assert.Len(t, *user.OTP, 6)
	assert.True(t, user.OTPExpiresAt.After(time.Now()))

	code := *user.OTP

	t.Run("wrong code rejected", func(t *testing.T) {
		resp, err := service.LoginWithOTP(ctx, &model.LoginWithOTPRequest{Email: "jane@example.com", OTP: "000000x"})
		require.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("correct code logs in and is single use", func(t *testing.T) {
		resp, err := service.LoginWithOTP(ctx, &model.LoginWithOTPRequest{Email: "jane@example.com", OTP: code})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.True(t, user.EmailVerified)
		assert.Nil(t, user.OTP)
		assert.Nil(t, user.OTPExpiresAt)

		resp, err = service.LoginWithOTP(ctx, &model.LoginWithOTPRequest{Email: "jane@example.com", OTP: code})
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestAuthService_RequestOTP_UnknownEmailSilent(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	mockUserRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

	err := service.RequestOTP(ctx, "ghost@example.com")

	// Account existence must not leak.
	require.NoError(t, err)
	mockUserRepo.AssertNotCalled(t, "Update")
}

func TestAuthService_RegistrationOTPFlow(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	var placeholder *model.User
	mockUserRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, nil).Once()
	mockUserRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			placeholder = args.Get(1).(*model.User)
			placeholder.ID = 42
		}).Return(nil)

	err := service.RequestRegistrationOTP(ctx, "new@example.com")
	require.NoError(t, err)

	// The email is reserved by an inactive placeholder holding the code.
	require.NotNil(t, placeholder)
	assert.Equal(t, model.UserInactive, placeholder.Status)
	assert.NotEmpty(t, placeholder.PasswordHash)
	require.NotNil(t, placeholder.OTP)
	assert.Len(t, *placeholder.OTP, 6)
	require.NotNil(t, placeholder.OTPExpiresAt)
	assert.True(t, placeholder.OTPExpiresAt.After(time.Now()))

	code := *placeholder.OTP
	mockUserRepo.On("GetByEmail", ctx, "new@example.com").Return(placeholder, nil)
	mockUserRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	t.Run("wrong code rejected", func(t *testing.T) {
		resp, err := service.RegisterWithOTP(ctx, &model.RegisterWithOTPRequest{
			Email: "new@example.com", OTP: "000000x", FirstName: "Jane", LastName: "Doe",
		})
		require.Error(t, err)
		assert.Nil(t, resp)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindAccessDenied, domainErr.Kind)
	})

	t.Run("correct code activates the account", func(t *testing.T) {
		resp, err := service.RegisterWithOTP(ctx, &model.RegisterWithOTPRequest{
			Email: "new@example.com", OTP: code, FirstName: "Jane", LastName: "Doe",
		})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)

		assert.Equal(t, model.UserActive, placeholder.Status)
		assert.True(t, placeholder.EmailVerified)
		assert.Equal(t, "Jane", placeholder.FirstName)
		assert.Equal(t, "Doe", placeholder.LastName)
		assert.Nil(t, placeholder.OTP)
		assert.Nil(t, placeholder.OTPExpiresAt)
	})
}

func TestAuthService_RequestRegistrationOTP_ActiveEmailRejected(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	existing := activeUser(t)
	mockUserRepo.On("GetByEmail", ctx, existing.Email).Return(existing, nil)

	err := service.RequestRegistrationOTP(ctx, existing.Email)

	require.Error(t, err)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindDuplicate, domainErr.Kind)

	mockUserRepo.AssertNotCalled(t, "Create")
	mockUserRepo.AssertNotCalled(t, "Update")
}

func TestAuthService_RequestRegistrationOTP_ReRequestRotatesCode(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	old := "111111"
	expired := time.Now().Add(-time.Minute)
	placeholder := &model.User{ID: 42, Email: "new@example.com", Status: model.UserInactive, OTP: &old, OTPExpiresAt: &expired}
	mockUserRepo.On("GetByEmail", ctx, "new@example.com").Return(placeholder, nil)
	mockUserRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	err := service.RequestRegistrationOTP(ctx, "new@example.com")

	require.NoError(t, err)
	require.NotNil(t, placeholder.OTP)
	assert.NotEqual(t, "111111", *placeholder.OTP)
	assert.True(t, placeholder.OTPExpiresAt.After(time.Now()))

	mockUserRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_RegisterWithOTP_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no pending registration", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		mockUserRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, nil)

		resp, err := service.RegisterWithOTP(ctx, &model.RegisterWithOTPRequest{
			Email: "new@example.com", OTP: "123456", FirstName: "Jane", LastName: "Doe",
		})

		require.Error(t, err)
		assert.Nil(t, resp)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindIllegalState, domainErr.Kind)
	})

	t.Run("active email rejected", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		existing := activeUser(t)
		mockUserRepo.On("GetByEmail", ctx, existing.Email).Return(existing, nil)

		resp, err := service.RegisterWithOTP(ctx, &model.RegisterWithOTPRequest{
			Email: existing.Email, OTP: "123456", FirstName: "Jane", LastName: "Doe",
		})

		require.Error(t, err)
		assert.Nil(t, resp)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindDuplicate, domainErr.Kind)
	})

	t.Run("expired code rejected", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		code := "123456"
		expired := time.Now().Add(-time.Minute)
		placeholder := &model.User{ID: 42, Email: "new@example.com", Status: model.UserInactive, OTP: &code, OTPExpiresAt: &expired}
		mockUserRepo.On("GetByEmail", ctx, "new@example.com").Return(placeholder, nil)

		resp, err := service.RegisterWithOTP(ctx, &model.RegisterWithOTPRequest{
			Email: "new@example.com", OTP: code, FirstName: "Jane", LastName: "Doe",
		})

		require.Error(t, err)
		assert.Nil(t, resp)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindAccessDenied, domainErr.Kind)
	})

	t.Run("missing names rejected", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

		resp, err := service.RegisterWithOTP(ctx, &model.RegisterWithOTPRequest{Email: "new@example.com", OTP: "123456"})

		require.Error(t, err)
		assert.Nil(t, resp)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidation, domainErr.Kind)
		assert.Contains(t, domainErr.Fields, "firstName")
		assert.Contains(t, domainErr.Fields, "lastName")

		mockUserRepo.AssertNotCalled(t, "GetByEmail")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokenProvider()

	user := &model.User{ID: 42, Email: "jane@example.com", Status: model.UserActive}
	pair, err := tokens.Issue(user)
	require.NoError(t, err)
	user.RefreshToken = &pair.RefreshToken

	t.Run("success", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, tokens, newTestDispatcher(), zerolog.Nop())

		mockUserRepo.On("GetByID", ctx, int64(42)).Return(user, nil)
		mockUserRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		resp, err := service.Refresh(ctx, pair.RefreshToken)

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, tokens, newTestDispatcher(), zerolog.Nop())

		resp, err := service.Refresh(ctx, pair.AccessToken)

		require.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("stale token rejected", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := NewAuthService(mockUserRepo, tokens, newTestDispatcher(), zerolog.Nop())

		stale := *user
		rotated := "a-different-stored-token"
		stale.RefreshToken = &rotated
		mockUserRepo.On("GetByID", ctx, int64(42)).Return(&stale, nil)

		resp, err := service.Refresh(ctx, pair.RefreshToken)

		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := new(MockUserRepository)
	service := NewAuthService(mockUserRepo, newTestTokenProvider(), newTestDispatcher(), zerolog.Nop())

	stored := "stored-refresh-token"
	user := &model.User{ID: 42, Status: model.UserActive, RefreshToken: &stored}
	mockUserRepo.On("GetByID", ctx, int64(42)).Return(user, nil)
	mockUserRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	err := service.Logout(ctx, 42)

	require.NoError(t, err)
	assert.Nil(t, user.RefreshToken)
}
