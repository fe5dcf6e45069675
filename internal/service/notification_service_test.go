package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil && n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// recordingWSNotifier собирает события, рассылка идёт из отдельной горутины.
type recordingWSNotifier struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func newRecordingWSNotifier() *recordingWSNotifier {
	return &recordingWSNotifier{done: make(chan struct{}, 8)}
}

func (r *recordingWSNotifier) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingWSNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(time.Second):
		t.Fatal("событие не было разослано")
	}
}

func TestNotificationService_Notify_PersistsThenBroadcasts(t *testing.T) {
	repo := new(mockNotificationRepo)
	ws := newRecordingWSNotifier()
	svc := NewNotificationService(repo, ws)
	ctx := context.Background()

	userID := uuid.New()
	repo.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID && n.Event == "offer.received" && len(n.Payload) > 0
	})).Return(nil)

	err := svc.Notify(ctx, userID, "offer.received", map[string]string{"chat_id": uuid.NewString()})

	assert.NoError(t, err)
	ws.wait(t)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	assert.Equal(t, []string{"offer.received"}, ws.events)
}

func TestNotificationService_Notify_PersistFailureIsFatal(t *testing.T) {
	repo := new(mockNotificationRepo)
	ws := newRecordingWSNotifier()
	svc := NewNotificationService(repo, ws)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(assert.AnError)

	err := svc.Notify(ctx, uuid.New(), "order.completed", struct{}{})

	assert.Error(t, err)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	assert.Empty(t, ws.events, "без сохранения рассылки быть не должно")
}

func TestNotificationService_MarkAsRead_NotFound(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	userID, notifID := uuid.New(), uuid.New()
	repo.On("MarkAsRead", ctx, notifID, userID).Return(repository.ErrNotificationNotFound)

	err := svc.MarkAsRead(ctx, userID, notifID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestNotificationService_List_ClampsLimit(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("List", ctx, userID, 50, 0).Return([]models.Notification{}, nil)

	_, err := svc.List(ctx, userID, -1, -1)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
