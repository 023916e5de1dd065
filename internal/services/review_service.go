package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/pkg/mailer"
)

// ReviewService implements the review ledger. A resident may hold at most
// one review for their current stay, and a review always belongs to the
// listing the resident lives in. Creation and deletion keep the listing's
// denormalized review list in step via repository transactions.
type ReviewService struct {
	reviewRepo   *database.ReviewRepository
	residentRepo *database.ResidentRepository
	listingRepo  *database.ListingRepository
	userRepo     *database.UserRepository
	mail         mailer.Sender
	logger       *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo *database.ReviewRepository,
	residentRepo *database.ResidentRepository,
	listingRepo *database.ListingRepository,
	userRepo *database.UserRepository,
	mail mailer.Sender,
	logger *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		residentRepo: residentRepo,
		listingRepo:  listingRepo,
		userRepo:     userRepo,
		mail:         mail,
		logger:       logger,
	}
}

// Add creates a review for the caller's current listing. The caller must be
// an active resident of that listing and must not already have a review.
func (s *ReviewService) Add(userID, listingID uuid.UUID, body string, rating models.Rating) (*models.Review, error) {
	resident, err := s.residentRepo.GetActiveByUserID(userID)
	if err != nil {
		return nil, err
	}
	if resident == nil {
		return nil, fmt.Errorf("%w: no active resident account", ErrForbidden)
	}
	if resident.ListingID != listingID {
		return nil, fmt.Errorf("%w: review must target your own listing", ErrForbidden)
	}

	if !rating.Valid() {
		return nil, fmt.Errorf("%w: every rating must be between 1 and 5", ErrValidation)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: review text is required", ErrValidation)
	}

	count, err := s.reviewRepo.CountByResident(resident.ID)
	if err != nil {
		return nil, err
	}
	if count >= 1 {
		return nil, fmt.Errorf("%w: one review per stay", ErrReviewLimit)
	}

	review := &models.Review{
		ListingID:    listingID,
		ResidentID:   resident.ID,
		ResidentName: resident.Name,
		Body:         body,
		Rating:       rating,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	s.notifyHost(listingID, fmt.Sprintf("%s posted a new review.", resident.Name))

	return review, nil
}

// Update rewrites the caller's own review
func (s *ReviewService) Update(userID, reviewID uuid.UUID, body string, rating models.Rating) (*models.Review, error) {
	resident, err := s.residentRepo.GetActiveByUserID(userID)
	if err != nil {
		return nil, err
	}
	if resident == nil {
		return nil, fmt.Errorf("%w: no active resident account", ErrForbidden)
	}

	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, fmt.Errorf("%w: review", ErrNotFound)
	}
	if review.ResidentID != resident.ID {
		return nil, fmt.Errorf("%w: not your review", ErrForbidden)
	}

	if !rating.Valid() {
		return nil, fmt.Errorf("%w: every rating must be between 1 and 5", ErrValidation)
	}
	if body != "" {
		review.Body = body
	}
	review.Rating = rating

	ok, err := s.reviewRepo.Update(review)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: review", ErrNotFound)
	}

	return review, nil
}

// Delete removes the caller's own review and its reference in the listing's
// review list.
func (s *ReviewService) Delete(userID, reviewID uuid.UUID) error {
	resident, err := s.residentRepo.GetActiveByUserID(userID)
	if err != nil {
		return err
	}
	if resident == nil {
		return fmt.Errorf("%w: no active resident account", ErrForbidden)
	}

	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return fmt.Errorf("%w: review", ErrNotFound)
	}
	if review.ResidentID != resident.ID || review.ListingID != resident.ListingID {
		return fmt.Errorf("%w: not your review", ErrForbidden)
	}

	ok, err := s.reviewRepo.Delete(reviewID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: review", ErrNotFound)
	}

	return nil
}

// ListForHost retrieves all reviews of a host's listing
func (s *ReviewService) ListForHost(hostID, listingID uuid.UUID) ([]*models.Review, error) {
	ok, err := s.listingRepo.ExistsForHost(listingID, hostID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}
	return s.reviewRepo.ListByListing(listingID)
}

// ListPublic retrieves all reviews of a listing for the public detail page
func (s *ReviewService) ListPublic(listingID uuid.UUID) ([]*models.Review, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}
	return s.reviewRepo.ListByListing(listingID)
}

// AverageRating computes per-dimension means and the unweighted overall mean
// for a host's listing. A listing with no reviews returns ErrNoReviews
// instead of a zero summary.
func (s *ReviewService) AverageRating(hostID, listingID uuid.UUID) (*models.RatingSummary, error) {
	ok, err := s.listingRepo.ExistsForHost(listingID, hostID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}

	food, facilities, hygienic, safety, count, err := s.reviewRepo.AggregateRatings(listingID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoReviews
	}

	n := float64(count)
	summary := &models.RatingSummary{
		ListingID:         listingID,
		AverageFood:       float64(food) / n,
		AverageFacilities: float64(facilities) / n,
		AverageHygienic:   float64(hygienic) / n,
		AverageSafety:     float64(safety) / n,
		ReviewCount:       count,
	}
	summary.OverallAverage = (summary.AverageFood + summary.AverageFacilities +
		summary.AverageHygienic + summary.AverageSafety) / 4

	return summary, nil
}

// notifyHost emails the listing's host, best-effort
func (s *ReviewService) notifyHost(listingID uuid.UUID, body string) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil || listing == nil {
		return
	}
	host, err := s.userRepo.GetByID(listing.HostID)
	if err != nil || host == nil {
		return
	}
	if err := s.mail.Send(host.Email, "New review on "+listing.Name, body); err != nil {
		s.logger.WithError(err).Warn("Review notice email failed")
	}
}
