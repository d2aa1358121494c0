package reviews

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *storage.Memory, model.Tutor) {
	t.Helper()
	store := storage.NewMemory()
	store.AddUser(model.UserRef{ID: "u-tutor", Name: "Tina"})
	store.AddUser(model.UserRef{ID: "u-sam", Name: "Sam", Email: "sam@example.com"})
	tutor := model.Tutor{UserID: "u-tutor", Name: "Tina"}
	require.NoError(t, store.CreateTutor(context.Background(), &tutor))
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store, tutor
}

var sam = auth.Identity{ID: "u-sam", Role: auth.RoleStudent}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 4.0, Mean([]int{4, 5, 3}))
	assert.InDelta(t, 4.5, Mean([]int{4, 5}), 1e-9)
}

func TestRatingIsMeanOfAllReviews(t *testing.T) {
	svc, store, tutor := setup(t)
	ctx := context.Background()
	for _, r := range []int{4, 5, 3} {
		_, err := svc.Create(ctx, sam, CreateInput{Tutor: tutor.ID, Rating: r})
		require.NoError(t, err)
	}
	got, err := store.GetTutor(ctx, tutor.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Rating)

	list, err := svc.ListForTutor(ctx, tutor.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Sam", list[0].Student.Name)
	assert.Empty(t, list[0].Student.Email)
}

func TestConcurrentReviewsKeepMean(t *testing.T) {
	svc, store, tutor := setup(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, _ = svc.Create(ctx, sam, CreateInput{Tutor: tutor.ID, Rating: rating})
		}(i%5 + 1)
	}
	wg.Wait()
	got, err := store.GetTutor(ctx, tutor.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Rating)
}

func TestCreateErrors(t *testing.T) {
	svc, _, tutor := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, auth.Identity{ID: "u-tutor", Role: auth.RoleTutor}, CreateInput{Tutor: tutor.ID, Rating: 5})
	assert.Equal(t, "Only students can submit reviews.", apperr.Message(err))

	_, err = svc.Create(ctx, sam, CreateInput{Tutor: tutor.ID, Rating: 6})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, sam, CreateInput{Tutor: "missing", Rating: 4})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
