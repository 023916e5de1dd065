package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/pkg/mailer"
)

// CreateResidentInput carries the fields a host submits when onboarding a
// resident into a room.
type CreateResidentInput struct {
	RoomID          uuid.UUID
	Name            string
	Email           string
	PhoneNumber     string
	Address         string
	GuardianName    string
	GuardianNumber  string
	ProfileImageURL string
	AadharCardURL   string
}

// UpdateResidentInput carries the mutable resident fields. A changed RoomID
// moves the resident between rooms.
type UpdateResidentInput struct {
	RoomID          uuid.UUID
	Name            string
	Email           string
	PhoneNumber     string
	Address         string
	GuardianName    string
	GuardianNumber  string
	ProfileImageURL string
	AadharCardURL   string
}

// ResidentService implements the resident lifecycle: onboarding, profile
// updates, room moves, soft-deletion and account linking. Every occupancy
// change is followed by a reconcile of the affected room(s).
type ResidentService struct {
	residentRepo *database.ResidentRepository
	roomRepo     *database.RoomRepository
	listingRepo  *database.ListingRepository
	userRepo     *database.UserRepository
	occupancy    *OccupancyService
	mail         mailer.Sender
	logger       *logrus.Logger
	appBaseURL   string
}

// NewResidentService creates a new resident service
func NewResidentService(
	residentRepo *database.ResidentRepository,
	roomRepo *database.RoomRepository,
	listingRepo *database.ListingRepository,
	userRepo *database.UserRepository,
	occupancy *OccupancyService,
	mail mailer.Sender,
	logger *logrus.Logger,
	appBaseURL string,
) *ResidentService {
	return &ResidentService{
		residentRepo: residentRepo,
		roomRepo:     roomRepo,
		listingRepo:  listingRepo,
		userRepo:     userRepo,
		occupancy:    occupancy,
		mail:         mail,
		logger:       logger,
		appBaseURL:   appBaseURL,
	}
}

// Create onboards a resident into a room of the host's listing. The room must
// have a vacant slot; both document URLs are required. The room is marked
// occupied immediately and then reconciled against the actual count, so the
// flag ends up correct even for multi-sharing rooms.
func (s *ResidentService) Create(hostID, listingID uuid.UUID, input CreateResidentInput) (*models.Resident, error) {
	if input.Name == "" || input.Email == "" || input.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: name, email and phone number are required", ErrValidation)
	}
	if input.ProfileImageURL == "" || input.AadharCardURL == "" {
		return nil, fmt.Errorf("%w: profile image and aadhar card are required", ErrValidation)
	}

	listing, err := s.listingRepo.GetByIDForHost(listingID, hostID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}

	room, err := s.roomRepo.GetByIDForHost(input.RoomID, listingID, hostID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room", ErrNotFound)
	}

	count, err := s.residentRepo.CountActiveInRoom(room.ID)
	if err != nil {
		return nil, err
	}
	if count >= room.Sharing {
		return nil, fmt.Errorf("%w: room %d already has %d of %d occupants",
			ErrRoomFull, room.RoomNumber, count, room.Sharing)
	}

	resident := &models.Resident{
		ListingID:       listingID,
		RoomID:          room.ID,
		HostID:          hostID,
		Name:            input.Name,
		Email:           input.Email,
		PhoneNumber:     input.PhoneNumber,
		Address:         input.Address,
		GuardianName:    input.GuardianName,
		GuardianNumber:  input.GuardianNumber,
		ProfileImageURL: input.ProfileImageURL,
		AadharCardURL:   input.AadharCardURL,
	}
	if err := s.residentRepo.Create(resident); err != nil {
		return nil, err
	}

	// Provisional occupied mark, corrected by the reconcile right after.
	if err := s.roomRepo.SetAvailability(room.ID, false); err != nil {
		s.logger.WithError(err).WithField("room_id", room.ID).Error("Failed to mark room occupied")
	}
	s.occupancy.reconcileQuietly(room.ID)

	s.sendMail(resident.Email, "Welcome to "+listing.Name,
		fmt.Sprintf("Hi %s,\n\nYou have been added as a resident of %s.\nRoom %d (floor %d, %d sharing).\n\nWelcome aboard!",
			resident.Name, listing.Name, room.RoomNumber, room.Floor, room.Sharing))

	return resident, nil
}

// Get retrieves one active resident scoped to the host's listing
func (s *ResidentService) Get(hostID, listingID, residentID uuid.UUID) (*models.Resident, error) {
	resident, err := s.residentRepo.GetByID(residentID, listingID, hostID)
	if err != nil {
		return nil, err
	}
	if resident == nil {
		return nil, fmt.Errorf("%w: resident", ErrNotFound)
	}
	return resident, nil
}

// List retrieves the active residents of a host's listing
func (s *ResidentService) List(hostID, listingID uuid.UUID) ([]*models.Resident, error) {
	ok, err := s.listingRepo.ExistsForHost(listingID, hostID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}
	return s.residentRepo.ListByListing(listingID, hostID)
}

// ListDeleted retrieves the soft-deleted residents of a host's listing
func (s *ResidentService) ListDeleted(hostID, listingID uuid.UUID) ([]*models.Resident, error) {
	ok, err := s.listingRepo.ExistsForHost(listingID, hostID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}
	return s.residentRepo.ListDeleted(listingID, hostID)
}

// Update merges the submitted fields into the resident. When the room
// changes, capacity is checked on the new room and both rooms are
// reconciled afterwards.
func (s *ResidentService) Update(hostID, listingID, residentID uuid.UUID, input UpdateResidentInput) (*models.Resident, error) {
	resident, err := s.residentRepo.GetByID(residentID, listingID, hostID)
	if err != nil {
		return nil, err
	}
	if resident == nil {
		return nil, fmt.Errorf("%w: resident", ErrNotFound)
	}

	oldRoomID := resident.RoomID
	roomChanged := input.RoomID != uuid.Nil && input.RoomID != oldRoomID

	if roomChanged {
		newRoom, err := s.roomRepo.GetByIDForHost(input.RoomID, listingID, hostID)
		if err != nil {
			return nil, err
		}
		if newRoom == nil {
			return nil, fmt.Errorf("%w: room", ErrNotFound)
		}

		count, err := s.residentRepo.CountActiveInRoom(newRoom.ID)
		if err != nil {
			return nil, err
		}
		if count >= newRoom.Sharing {
			return nil, fmt.Errorf("%w: room %d already has %d of %d occupants",
				ErrRoomFull, newRoom.RoomNumber, count, newRoom.Sharing)
		}

		resident.RoomID = newRoom.ID
	}

	applyIfSet := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	applyIfSet(&resident.Name, input.Name)
	applyIfSet(&resident.Email, input.Email)
	applyIfSet(&resident.PhoneNumber, input.PhoneNumber)
	applyIfSet(&resident.Address, input.Address)
	applyIfSet(&resident.GuardianName, input.GuardianName)
	applyIfSet(&resident.GuardianNumber, input.GuardianNumber)
	applyIfSet(&resident.ProfileImageURL, input.ProfileImageURL)
	applyIfSet(&resident.AadharCardURL, input.AadharCardURL)

	ok, err := s.residentRepo.Update(resident)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: resident", ErrNotFound)
	}

	if roomChanged {
		s.occupancy.reconcileQuietly(oldRoomID)
		s.occupancy.reconcileQuietly(resident.RoomID)
	}

	s.sendMail(resident.Email, "Your account was updated",
		fmt.Sprintf("Hi %s,\n\nYour resident account details were updated by your PG admin.", resident.Name))

	return resident, nil
}

// SoftDelete deactivates a resident. The record stays in storage so payment
// and review history survive; the vacated room is reconciled.
func (s *ResidentService) SoftDelete(hostID, listingID, residentID uuid.UUID) error {
	resident, err := s.residentRepo.GetByID(residentID, listingID, hostID)
	if err != nil {
		return err
	}
	if resident == nil {
		return fmt.Errorf("%w: resident", ErrNotFound)
	}

	ok, err := s.residentRepo.SoftDelete(residentID, listingID, hostID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: resident", ErrNotFound)
	}

	if err := s.roomRepo.SetAvailability(resident.RoomID, true); err != nil {
		s.logger.WithError(err).WithField("room_id", resident.RoomID).Error("Failed to mark room available")
	}
	s.occupancy.reconcileQuietly(resident.RoomID)

	s.sendMail(resident.Email, "Your account was deactivated",
		fmt.Sprintf("Hi %s,\n\nYour resident account has been deactivated by your PG admin.", resident.Name))

	return nil
}

// SendConfirmationLink emails a resident a link that, when followed while
// logged in, binds their user account to the resident record. The target
// email must already belong to a registered user.
func (s *ResidentService) SendConfirmationLink(hostID, listingID, residentID uuid.UUID, email string) error {
	resident, err := s.residentRepo.GetByID(residentID, listingID, hostID)
	if err != nil {
		return err
	}
	if resident == nil {
		return fmt.Errorf("%w: resident", ErrNotFound)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: no registered account for %s", ErrNotFound, email)
	}

	link := fmt.Sprintf("%s/confirm?user=%s&resident=%s", s.appBaseURL, user.ID, resident.ID)
	if err := s.mail.Send(email, "Confirm your resident account",
		fmt.Sprintf("Hi %s,\n\nConfirm your resident account by opening this link:\n%s",
			resident.Name, link)); err != nil {
		return fmt.Errorf("failed to send confirmation link: %w", err)
	}

	return nil
}

// ConfirmResident binds a user account to a resident record. Called from the
// emailed link, so it is not host-scoped.
func (s *ResidentService) ConfirmResident(residentID, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrNotFound)
	}

	// One active stay per account; a stale link reused elsewhere is rejected.
	existing, err := s.residentRepo.GetActiveByUserID(userID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != residentID {
		return fmt.Errorf("%w: account is already linked to another active resident", ErrValidation)
	}

	ok, err := s.residentRepo.LinkAccount(residentID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: resident", ErrNotFound)
	}

	s.logger.WithFields(logrus.Fields{
		"resident_id": residentID,
		"user_id":     userID,
	}).Info("Resident account linked")

	return nil
}

// GetStayByUserID retrieves the active resident record linked to a user,
// together with the listing they stay in. Resident-facing.
func (s *ResidentService) GetStayByUserID(userID uuid.UUID) (*models.Resident, *models.PgListing, error) {
	resident, err := s.residentRepo.GetActiveByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	if resident == nil {
		return nil, nil, fmt.Errorf("%w: no active stay", ErrNotFound)
	}

	listing, err := s.listingRepo.GetByID(resident.ListingID)
	if err != nil {
		return nil, nil, err
	}

	return resident, listing, nil
}

// sendMail delivers a notification and only logs failures. A lost email must
// never undo the state change it announces.
func (s *ResidentService) sendMail(to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.mail.Send(to, subject, body); err != nil {
		s.logger.WithError(err).WithField("to", to).Warn("Notification email failed")
	}
}
