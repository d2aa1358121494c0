// Package reviews records student reviews and keeps each tutor's mean
// rating in step with them.
package reviews

import (
	"context"
	"errors"
	"log/slog"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/storage"
)

type Service struct {
	store  storage.Store
	logger *slog.Logger
}

func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type CreateInput struct {
	Tutor   string `json:"tutor" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Mean is the arithmetic mean of ratings, 0 when there are none.
func Mean(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// Create stores the review and rewrites the tutor's rating from every
// review on file. The tutor row is locked for the whole transaction so
// concurrent reviews cannot overwrite each other's mean.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (model.Review, error) {
	if err := policy.Authorize(policy.CreateReview, caller.Role, policy.Any); err != nil {
		return model.Review{}, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, apperr.Validation("rating must be between 1 and 5")
	}

	var out model.Review
	var mean float64
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		tutor, err := tx.LockTutor(ctx, in.Tutor)
		if err != nil {
			return lookupErr(err, "Tutor not found")
		}
		r := model.Review{TutorID: tutor.ID, Student: model.UserRef{ID: caller.ID}, Rating: in.Rating, Comment: in.Comment}
		if err := tx.InsertReview(ctx, &r); err != nil {
			return lookupErr(err, "Tutor not found")
		}
		ratings, err := tx.TutorRatings(ctx, tutor.ID)
		if err != nil {
			return apperr.Store("Failed to submit review", err)
		}
		mean = Mean(ratings)
		if err := tx.SetTutorRating(ctx, tutor.ID, mean); err != nil {
			return apperr.Store("Failed to submit review", err)
		}
		out = r
		return nil
	})
	if err != nil {
		return model.Review{}, err
	}
	s.logger.Info("review added", "tutor_id", out.TutorID, "rating", out.Rating, "mean", mean)
	return out, nil
}

func (s *Service) ListForTutor(ctx context.Context, tutorID string) ([]model.Review, error) {
	out, err := s.store.ListReviews(ctx, tutorID)
	if err != nil {
		return nil, apperr.Store("Failed to fetch reviews", err)
	}
	if out == nil {
		out = []model.Review{}
	}
	return out, nil
}

func lookupErr(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Store("Failed to submit review", err)
}
