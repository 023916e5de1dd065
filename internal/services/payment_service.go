package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/pkg/mailer"
	"github.com/stayease/pg-management-backend/pkg/payment"
)

// ReminderSummary reports how a reminder batch went. A resident without a
// matching pricing tier is skipped; gateway or email failures count as
// failed. One resident's failure never aborts the batch.
type ReminderSummary struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// PaymentService orchestrates rent collection: it creates gateway orders and
// emails payment reminders, and it confirms or fails payments from signed
// checkout callbacks. A payment starts pending and moves to exactly one
// terminal state, never backward.
type PaymentService struct {
	paymentRepo     *database.PaymentRepository
	residentRepo    *database.ResidentRepository
	listingRepo     *database.ListingRepository
	roomRepo        *database.RoomRepository
	userRepo        *database.UserRepository
	gateway         payment.Gateway
	mail            mailer.Sender
	logger          *logrus.Logger
	currency        string
	paymentLinkBase string
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo *database.PaymentRepository,
	residentRepo *database.ResidentRepository,
	listingRepo *database.ListingRepository,
	roomRepo *database.RoomRepository,
	userRepo *database.UserRepository,
	gateway payment.Gateway,
	mail mailer.Sender,
	logger *logrus.Logger,
	currency, paymentLinkBase string,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		residentRepo:    residentRepo,
		listingRepo:     listingRepo,
		roomRepo:        roomRepo,
		userRepo:        userRepo,
		gateway:         gateway,
		mail:            mail,
		logger:          logger,
		currency:        currency,
		paymentLinkBase: paymentLinkBase,
	}
}

// SendReminders creates a pending payment and emails a payment link for every
// active resident of the listing. The rent amount comes from the listing's
// pricing tier matching the resident's room sharing; residents whose room has
// no tier are skipped.
func (s *PaymentService) SendReminders(hostID, listingID uuid.UUID) (ReminderSummary, error) {
	var summary ReminderSummary

	listing, err := s.listingRepo.GetByIDForHost(listingID, hostID)
	if err != nil {
		return summary, err
	}
	if listing == nil {
		return summary, fmt.Errorf("%w: listing", ErrNotFound)
	}

	residents, err := s.residentRepo.ListByListing(listingID, hostID)
	if err != nil {
		return summary, err
	}

	for _, resident := range residents {
		log := s.logger.WithFields(logrus.Fields{
			"resident_id": resident.ID,
			"listing_id":  listingID,
		})

		room, err := s.roomRepo.GetByID(resident.RoomID)
		if err != nil {
			log.WithError(err).Error("Reminder failed: room lookup")
			summary.Failed++
			continue
		}
		if room == nil {
			log.Warn("Reminder skipped: resident's room not found")
			summary.Skipped++
			continue
		}

		tier, ok := listing.TierForShare(room.Sharing)
		if !ok {
			log.WithField("sharing", room.Sharing).Warn("Reminder skipped: no pricing tier for sharing")
			summary.Skipped++
			continue
		}

		// Gateway amounts are in minor units (paise for INR).
		orderID, err := s.gateway.CreateOrder(int64(tier.Amount)*100, s.currency, "rent_"+resident.ID.String())
		if err != nil {
			log.WithError(err).Error("Reminder failed: gateway order")
			summary.Failed++
			continue
		}

		p := &models.Payment{
			ListingID:      listingID,
			ResidentID:     resident.ID,
			Amount:         tier.Amount,
			Method:         models.PaymentMethodRazorpay,
			Status:         models.PaymentStatusPending,
			GatewayOrderID: orderID,
		}
		if err := s.paymentRepo.Create(p); err != nil {
			log.WithError(err).Error("Reminder failed: payment record")
			summary.Failed++
			continue
		}

		link := fmt.Sprintf("%s/%s", s.paymentLinkBase, orderID)
		body := fmt.Sprintf("Hi %s,\n\nYour monthly rent of %d %s for %s is due.\nPay here: %s",
			resident.Name, tier.Amount, s.currency, listing.Name, link)
		if err := s.mail.Send(resident.Email, "Rent payment reminder", body); err != nil {
			log.WithError(err).Error("Reminder failed: email")
			summary.Failed++
			continue
		}

		summary.Sent++
	}

	s.logger.WithFields(logrus.Fields{
		"listing_id": listingID,
		"sent":       summary.Sent,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	}).Info("Payment reminders processed")

	return summary, nil
}

// ConfirmPayment completes a pending payment from a checkout callback. The
// signature is the sole authorization: it is verified in constant time before
// anything is read or written, and a mismatch changes no state. Confirming an
// already-completed payment is a no-op; a failed payment never moves back.
func (s *PaymentService) ConfirmPayment(orderID, paymentID, signature string) (*models.Payment, error) {
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		return nil, ErrInvalidSignature
	}

	p, err := s.paymentRepo.GetByOrderIDWithResident(orderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payment", ErrNotFound)
	}

	switch p.Status {
	case models.PaymentStatusCompleted:
		// Duplicate callback; already settled.
		return &p.Payment, nil
	case models.PaymentStatusFailed:
		return nil, fmt.Errorf("%w: payment already failed", ErrInvalidTransition)
	}

	changed, err := s.paymentRepo.SetStatusFromPending(orderID, models.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost a race with another callback; the guard kept the row intact.
		return nil, fmt.Errorf("%w: payment is no longer pending", ErrInvalidTransition)
	}
	p.Status = models.PaymentStatusCompleted

	s.notifyPaymentCompleted(p)

	return &p.Payment, nil
}

// FailPayment marks a pending payment failed from a checkout failure
// callback. Same signature rules as ConfirmPayment; a completed payment
// never moves back to failed.
func (s *PaymentService) FailPayment(orderID, paymentID, signature string) (*models.Payment, error) {
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		return nil, ErrInvalidSignature
	}

	p, err := s.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payment", ErrNotFound)
	}

	switch p.Status {
	case models.PaymentStatusFailed:
		return p, nil
	case models.PaymentStatusCompleted:
		return nil, fmt.Errorf("%w: payment already completed", ErrInvalidTransition)
	}

	changed, err := s.paymentRepo.SetStatusFromPending(orderID, models.PaymentStatusFailed)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: payment is no longer pending", ErrInvalidTransition)
	}
	p.Status = models.PaymentStatusFailed

	s.logger.WithField("order_id", orderID).Info("Payment marked failed")

	return p, nil
}

// GetByOrderID retrieves a payment for the public pre-checkout page
func (s *PaymentService) GetByOrderID(orderID string) (*models.Payment, error) {
	p, err := s.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payment", ErrNotFound)
	}
	return p, nil
}

// ListByStatus retrieves a host listing's payments in one status with the
// resident display fields. Payments of soft-deleted residents are excluded.
func (s *PaymentService) ListByStatus(hostID, listingID uuid.UUID, status string) ([]*models.PaymentWithResident, error) {
	if err := s.requireListing(hostID, listingID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByStatus(listingID, status)
}

// TotalByStatus sums a host listing's payment amounts in one status,
// excluding payments of soft-deleted residents.
func (s *PaymentService) TotalByStatus(hostID, listingID uuid.UUID, status string) (int, error) {
	if err := s.requireListing(hostID, listingID); err != nil {
		return 0, err
	}
	return s.paymentRepo.TotalByStatus(listingID, status)
}

// ListByResident retrieves one resident's full payment history within a
// host's listing, regardless of status.
func (s *PaymentService) ListByResident(hostID, listingID, residentID uuid.UUID) ([]*models.Payment, error) {
	if err := s.requireListing(hostID, listingID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByResident(listingID, residentID)
}

func (s *PaymentService) requireListing(hostID, listingID uuid.UUID) error {
	ok, err := s.listingRepo.ExistsForHost(listingID, hostID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: listing", ErrNotFound)
	}
	return nil
}

// notifyPaymentCompleted emails the resident a receipt and the host a
// notice. Both are best-effort.
func (s *PaymentService) notifyPaymentCompleted(p *models.PaymentWithResident) {
	date := p.PaymentDate.Format("02 Jan 2006")

	if p.ResidentEmail != "" {
		body := fmt.Sprintf("Hi %s,\n\nYour rent payment of %d %s was received on %s.\nReference: %s",
			p.ResidentName, p.Amount, s.currency, date, p.GatewayOrderID)
		if err := s.mail.Send(p.ResidentEmail, "Payment received", body); err != nil {
			s.logger.WithError(err).Warn("Payment receipt email failed")
		}
	}

	listing, err := s.listingRepo.GetByID(p.ListingID)
	if err != nil || listing == nil {
		s.logger.WithField("listing_id", p.ListingID).Warn("Host notice skipped: listing lookup failed")
		return
	}
	host, err := s.userRepo.GetByID(listing.HostID)
	if err != nil || host == nil {
		s.logger.WithField("host_id", listing.HostID).Warn("Host notice skipped: host lookup failed")
		return
	}

	body := fmt.Sprintf("%s paid %d %s for %s on %s.\nReference: %s",
		p.ResidentName, p.Amount, s.currency, listing.Name, date, p.GatewayOrderID)
	if err := s.mail.Send(host.Email, "Rent payment received", body); err != nil {
		s.logger.WithError(err).Warn("Host payment notice email failed")
	}
}
