package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) GetByID(ctx context.Context, id int64) (*model.UserResponse, error) {
	user, err := s.activeUser(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := model.NewUserResponse(user)
	return &resp, nil
}

// Update applies a partial profile update; nil fields are left
// unchanged.
func (s *userService) Update(ctx context.Context, id int64, req *model.UserUpdateRequest) (*model.UserResponse, error) {
	user, err := s.activeUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		exists, err := s.userRepo.ExistsByPhone(ctx, *req.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		if exists && (user.PhoneNumber == nil || *user.PhoneNumber != *req.PhoneNumber) {
			return nil, model.NewDuplicate("Phone number is already registered")
		}
		user.PhoneNumber = req.PhoneNumber
		user.PhoneVerified = false
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info().Int64("user_id", id).Msg("user profile updated")

	resp := model.NewUserResponse(user)
	return &resp, nil
}

// Deactivate soft-deletes the account, keeping the row for order
// history.
func (s *userService) Deactivate(ctx context.Context, id int64) error {
	user, err := s.activeUser(ctx, id)
	if err != nil {
		return err
	}

	user.Status = model.UserDeleted
	user.RefreshToken = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.logger.Info().Int64("user_id", id).Msg("user deactivated")

	return nil
}

func (s *userService) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return model.NewValidation(map[string]string{
			"newPassword": fmt.Sprintf("Password must be at least %d characters", minPasswordLength),
		})
	}

	user, err := s.activeUser(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		s.logger.Warn().Int64("user_id", id).Msg("current password mismatch on change")
		return model.NewAccessDenied("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return fmt.Errorf("failed to change password: %w", err)
	}

	user.PasswordHash = string(hash)
	// Force re-authentication everywhere.
	user.RefreshToken = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Info().Int64("user_id", id).Msg("password changed")

	return nil
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]model.UserResponse, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = model.NewUserResponse(&users[i])
	}

	return responses, nil
}

func (s *userService) activeUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || user.Status == model.UserDeleted {
		return nil, model.NewNotFound(fmt.Sprintf("User %d not found", id))
	}
	return user, nil
}
