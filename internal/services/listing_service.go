package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/pkg/geocode"
	"github.com/stayease/pg-management-backend/pkg/mailer"
)

// ListingInput carries the host-submitted listing fields. Coordinates are
// resolved server-side from the address; they are never client input.
type ListingInput struct {
	Name         string
	Address      string
	Contact      string
	TotalRooms   int
	PgType       string
	FoodType     string
	Facilities   []string
	Images       []string
	Pricing      []models.PricingTier
	NearbyPlaces []models.NearbyPlace
}

// ListingService implements host CRUD over PG listings plus the public
// browse surface. Addresses are geocoded through Nominatim on create and
// whenever the address changes.
type ListingService struct {
	listingRepo *database.ListingRepository
	reviewRepo  *database.ReviewRepository
	userRepo    *database.UserRepository
	geocoder    geocode.Geocoder
	mail        mailer.Sender
	logger      *logrus.Logger
}

// NewListingService creates a new listing service
func NewListingService(
	listingRepo *database.ListingRepository,
	reviewRepo *database.ReviewRepository,
	userRepo *database.UserRepository,
	geocoder geocode.Geocoder,
	mail mailer.Sender,
	logger *logrus.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		geocoder:    geocoder,
		mail:        mail,
		logger:      logger,
	}
}

// Create registers a new listing for the host. The address must geocode to a
// location or the listing is rejected.
func (s *ListingService) Create(hostID uuid.UUID, input ListingInput) (*models.PgListing, error) {
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	lat, lng, err := s.geocoder.Geocode(input.Address)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			return nil, fmt.Errorf("%w: address could not be located", ErrValidation)
		}
		return nil, fmt.Errorf("%w: geocoding: %v", ErrUpstream, err)
	}

	listing := &models.PgListing{
		HostID:       hostID,
		Name:         input.Name,
		Address:      input.Address,
		Latitude:     lat,
		Longitude:    lng,
		Contact:      input.Contact,
		TotalRooms:   input.TotalRooms,
		PgType:       input.PgType,
		FoodType:     input.FoodType,
		Facilities:   input.Facilities,
		Images:       input.Images,
		Pricing:      input.Pricing,
		NearbyPlaces: input.NearbyPlaces,
	}
	if err := s.listingRepo.Create(listing); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"listing_id": listing.ID,
		"host_id":    hostID,
	}).Info("Listing created")

	return listing, nil
}

// Update rewrites a host's listing. The address is re-geocoded only when it
// actually changed; the host gets an email notice.
func (s *ListingService) Update(hostID, listingID uuid.UUID, input ListingInput) (*models.PgListing, error) {
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByIDForHost(listingID, hostID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}

	if input.Address != listing.Address {
		lat, lng, err := s.geocoder.Geocode(input.Address)
		if err != nil {
			if errors.Is(err, geocode.ErrNotFound) {
				return nil, fmt.Errorf("%w: address could not be located", ErrValidation)
			}
			return nil, fmt.Errorf("%w: geocoding: %v", ErrUpstream, err)
		}
		listing.Latitude = lat
		listing.Longitude = lng
	}

	listing.Name = input.Name
	listing.Address = input.Address
	listing.Contact = input.Contact
	listing.TotalRooms = input.TotalRooms
	listing.PgType = input.PgType
	listing.FoodType = input.FoodType
	listing.Facilities = input.Facilities
	listing.Images = input.Images
	listing.Pricing = input.Pricing
	listing.NearbyPlaces = input.NearbyPlaces

	if err := s.listingRepo.Update(listing); err != nil {
		return nil, err
	}

	s.notifyHost(hostID, "Your listing was updated",
		fmt.Sprintf("Your PG listing %q has been updated.", listing.Name))

	return listing, nil
}

// Delete removes a host's listing and notifies them
func (s *ListingService) Delete(hostID, listingID uuid.UUID) error {
	listing, err := s.listingRepo.GetByIDForHost(listingID, hostID)
	if err != nil {
		return err
	}
	if listing == nil {
		return fmt.Errorf("%w: listing", ErrNotFound)
	}

	ok, err := s.listingRepo.Delete(listingID, hostID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: listing", ErrNotFound)
	}

	s.notifyHost(hostID, "Your listing was deleted",
		fmt.Sprintf("Your PG listing %q has been removed.", listing.Name))

	return nil
}

// Get retrieves a listing with its reviews for the public detail page
func (s *ListingService) Get(listingID uuid.UUID) (*models.PgListing, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}

	reviews, err := s.reviewRepo.ListByListing(listingID)
	if err != nil {
		return nil, err
	}
	listing.Reviews = reviews

	return listing, nil
}

// ListAll retrieves every listing for the public browse page
func (s *ListingService) ListAll() ([]*models.PgListing, error) {
	return s.listingRepo.ListAll()
}

// ListByHost retrieves the caller's own listings
func (s *ListingService) ListByHost(hostID uuid.UUID) ([]*models.PgListing, error) {
	return s.listingRepo.ListByHost(hostID)
}

func validateListingInput(input ListingInput) error {
	if input.Name == "" || input.Address == "" || input.Contact == "" {
		return fmt.Errorf("%w: name, address and contact are required", ErrValidation)
	}
	if input.TotalRooms < 1 {
		return fmt.Errorf("%w: total rooms must be at least 1", ErrValidation)
	}
	if !models.IsValidPgType(input.PgType) {
		return fmt.Errorf("%w: unknown pg type %q", ErrValidation, input.PgType)
	}
	if !models.IsValidFoodType(input.FoodType) {
		return fmt.Errorf("%w: unknown food type %q", ErrValidation, input.FoodType)
	}
	for _, tier := range input.Pricing {
		if tier.Share < 1 || tier.Amount < 1 {
			return fmt.Errorf("%w: pricing tiers need a positive share and amount", ErrValidation)
		}
	}
	return nil
}

func (s *ListingService) notifyHost(hostID uuid.UUID, subject, body string) {
	host, err := s.userRepo.GetByID(hostID)
	if err != nil || host == nil {
		return
	}
	if err := s.mail.Send(host.Email, subject, body); err != nil {
		s.logger.WithError(err).Warn("Listing notice email failed")
	}
}
