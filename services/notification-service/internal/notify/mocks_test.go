package notify

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/storage"
	"github.com/stretchr/testify/mock"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Insert(ctx context.Context, n *storage.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockPruner struct{ mock.Mock }

func (m *mockPruner) PruneSeen(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
