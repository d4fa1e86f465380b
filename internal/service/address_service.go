package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// addressService implements AddressService.
type addressService struct {
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
	}
}

func (s *addressService) Create(ctx context.Context, userID int64, req *model.AddressRequest) (*model.Address, error) {
	if err := validateAddressRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	address := addressFromRequest(req)
	address.UserID = userID
	// The first address becomes the default regardless of the flag.
	if len(existing) == 0 {
		address.IsDefault = true
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	s.logger.Info().
		Int64("address_id", address.ID).
		Int64("user_id", userID).
		Bool("is_default", address.IsDefault).
		Msg("address created")

	return address, nil
}

func (s *addressService) GetByID(ctx context.Context, actorID, id int64) (*model.Address, error) {
	return s.ownedAddress(ctx, actorID, id)
}

func (s *addressService) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *addressService) Update(ctx context.Context, actorID, id int64, req *model.AddressRequest) (*model.Address, error) {
	if err := validateAddressRequest(req); err != nil {
		return nil, err
	}

	address, err := s.ownedAddress(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	updated := addressFromRequest(req)
	updated.ID = address.ID
	updated.UserID = address.UserID

	if err := s.addressRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	s.logger.Info().Int64("address_id", id).Msg("address updated")

	return updated, nil
}

func (s *addressService) SetDefault(ctx context.Context, actorID, id int64) (*model.Address, error) {
	address, err := s.ownedAddress(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	address.IsDefault = true
	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to set default address: %w", err)
	}

	s.logger.Info().
		Int64("address_id", id).
		Int64("user_id", address.UserID).
		Msg("default address changed")

	return address, nil
}

func (s *addressService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.ownedAddress(ctx, actorID, id); err != nil {
		return err
	}

	if err := s.addressRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	s.logger.Info().Int64("address_id", id).Msg("address deleted")

	return nil
}

// ownedAddress loads the address and verifies the actor owns it.
// Missing and foreign addresses are both reported as not found so ids
// cannot be enumerated.
func (s *addressService) ownedAddress(ctx context.Context, actorID, id int64) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	if address == nil || address.UserID != actorID {
		return nil, model.NewNotFound(fmt.Sprintf("Address %d not found", id))
	}
	return address, nil
}

func addressFromRequest(req *model.AddressRequest) *model.Address {
	addrType := req.Type
	if addrType == "" {
		addrType = model.AddressHome
	}

	return &model.Address{
		Type:        addrType,
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Line1:       strings.TrimSpace(req.Line1),
		Line2:       req.Line2,
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		Country:     strings.TrimSpace(req.Country),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		Landmark:    req.Landmark,
		IsDefault:   req.IsDefault,
	}
}

func validateAddressRequest(req *model.AddressRequest) error {
	fields := map[string]string{}

	if strings.TrimSpace(req.FullName) == "" {
		fields["fullName"] = "Full name is required"
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		fields["phoneNumber"] = "Phone number is required"
	}
	if strings.TrimSpace(req.Line1) == "" {
		fields["addressLine1"] = "Address line 1 is required"
	}
	if strings.TrimSpace(req.City) == "" {
		fields["city"] = "City is required"
	}
	if strings.TrimSpace(req.State) == "" {
		fields["state"] = "State is required"
	}
	if strings.TrimSpace(req.Country) == "" {
		fields["country"] = "Country is required"
	}
	if strings.TrimSpace(req.PostalCode) == "" {
		fields["postalCode"] = "Postal code is required"
	}
	if req.Type != "" && req.Type != model.AddressHome && req.Type != model.AddressWork && req.Type != model.AddressOther {
		fields["type"] = "Type must be HOME, WORK or OTHER"
	}

	if len(fields) > 0 {
		return model.NewValidation(fields)
	}
	return nil
}
