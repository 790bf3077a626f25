package lifecycle

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// CreateReviewParams параметры нового отзыва
type CreateReviewParams struct {
	TransactionID uuid.UUID
	FromUserID    uuid.UUID
	Rating        int
	Comment       string
}

// CreateReview сохраняет отзыв участника завершенной сделки о второй стороне.
// Каждая сторона может оставить не больше одного отзыва по сделке.
func (s *Service) CreateReview(ctx context.Context, p CreateReviewParams) (*models.Review, error) {
	current, err := s.store.GetTransaction(ctx, p.TransactionID)
	if err != nil {
		return nil, s.done("create_review", err)
	}

	var created *models.Review
	err = s.store.WithItemLock(ctx, current.ItemID, func(tx Tx) error {
		t, err := tx.GetTransaction(ctx, p.TransactionID)
		if err != nil {
			return err
		}
		if t.PartyOf(p.FromUserID) == models.PartyNone {
			return fmt.Errorf("%w: пользователь не участвует в сделке", ErrNotAuthorized)
		}
		if t.Status != models.TransactionStatusCompleted {
			return fmt.Errorf("%w: сделка в статусе %s", ErrInvalidState, t.Status)
		}

		existing, err := tx.ListReviews(ctx, models.ReviewFilter{
			TransactionID: &t.ID,
			FromUserID:    &p.FromUserID,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrDuplicateReview
		}
		if p.Rating < 1 || p.Rating > 5 {
			return fmt.Errorf("%w: %d", ErrInvalidRating, p.Rating)
		}

		r := &models.Review{
			ID:            s.newID(),
			ItemID:        t.ItemID,
			TransactionID: t.ID,
			FromUserID:    p.FromUserID,
			ToUserID:      t.Counterparty(p.FromUserID),
			Rating:        p.Rating,
			Comment:       p.Comment,
			CreatedAt:     s.now(),
		}
		if err := tx.CreateReview(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, s.done("create_review", err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":        created.ItemID,
		"transaction_id": created.TransactionID,
		"user_id":        created.FromUserID,
		"rating":         created.Rating,
	}).Info("отзыв оставлен")

	s.emit(TradeEvent{
		Type:          EventReviewCreated,
		ItemID:        created.ItemID,
		TransactionID: ptr(created.TransactionID),
		ActorID:       created.FromUserID,
		Recipients:    []uuid.UUID{created.ToUserID},
		Timestamp:     created.CreatedAt,
	})
	return created, s.done("create_review", nil)
}

// GetReviewStatus показывает, кто из сторон уже оставил отзыв по сделке
func (s *Service) GetReviewStatus(ctx context.Context, transactionID uuid.UUID) (*models.ReviewStatus, error) {
	t, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviews(ctx, models.ReviewFilter{TransactionID: &t.ID})
	if err != nil {
		return nil, err
	}

	status := &models.ReviewStatus{}
	for _, r := range reviews {
		switch t.PartyOf(r.FromUserID) {
		case models.PartyBuyer:
			status.BuyerReviewed = true
		case models.PartySeller:
			status.SellerReviewed = true
		}
	}
	return status, nil
}

// ListReviewsForUser возвращает отзывы о пользователе (новые первыми) и средний рейтинг
func (s *Service) ListReviewsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, models.RatingSummary, error) {
	reviews, err := s.store.ListReviews(ctx, models.ReviewFilter{ToUserID: &userID})
	if err != nil {
		return nil, models.RatingSummary{}, err
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	var summary models.RatingSummary
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	if len(reviews) > 0 {
		summary.Count = len(reviews)
		summary.Average = float64(total) / float64(len(reviews))
	}
	return reviews, summary, nil
}
