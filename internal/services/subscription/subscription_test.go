package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/todo-paywall/internal/models"
	"github.com/magabrotheeeer/todo-paywall/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) ActivateSubscription(ctx context.Context, userUID string, ends time.Time) error {
	args := m.Called(ctx, userUID, ends)
	return args.Error(0)
}
func (m *RepoMock) ClearSubscription(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	if state, ok := args.Get(2).(*models.SubscriptionState); ok && state != nil {
		*(result.(*models.SubscriptionState)) = *state
	}
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSubscriptionService_Activate(t *testing.T) {
	const userUID = "uid-1"
	user := &models.User{UID: userUID, Username: "testuser"}

	t.Run("grants one calendar month", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		publisher := new(PublisherMock)

		var persisted time.Time
		before := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Microsecond)
		repo.On("GetUser", mock.Anything, userUID).Return(user, nil).Once()
		repo.On("ActivateSubscription", mock.Anything, userUID, mock.MatchedBy(func(ends time.Time) bool {
			after := time.Now().UTC().AddDate(0, 1, 0)
			persisted = ends
			return !ends.Before(before) && !ends.After(after)
		})).Return(nil).Once()
		cacheMock.On("Invalidate", "subscription:"+userUID).Return(nil).Once()
		publisher.On("Publish", ActivatedRoutingKey, mock.AnythingOfType("services.ActivatedEvent")).Return(nil).Once()

		service := NewSubscriptionService(repo, cacheMock, publisher, newNoopLogger())

		ends, err := service.Activate(context.Background(), userUID)

		require.NoError(t, err)
		assert.False(t, ends.IsZero())
		// возвращённая дата совпадает с сохранённой и не несёт наносекунд,
		// которые timestamptz всё равно бы отбросил
		assert.True(t, ends.Equal(persisted))
		assert.True(t, ends.Equal(ends.Truncate(time.Microsecond)))
		repo.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("activation is unconditional for already subscribed user", func(t *testing.T) {
		subscribed := &models.User{UID: userUID, IsSubscribed: true}
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		publisher := new(PublisherMock)

		repo.On("GetUser", mock.Anything, userUID).Return(subscribed, nil).Once()
		repo.On("ActivateSubscription", mock.Anything, userUID, mock.AnythingOfType("time.Time")).Return(nil).Once()
		cacheMock.On("Invalidate", mock.Anything).Return(nil).Once()
		publisher.On("Publish", ActivatedRoutingKey, mock.Anything).Return(nil).Once()

		service := NewSubscriptionService(repo, cacheMock, publisher, newNoopLogger())

		_, err := service.Activate(context.Background(), userUID)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUser", mock.Anything, userUID).Return(nil, repository.ErrUserNotFound).Once()

		service := NewSubscriptionService(repo, new(CacheMock), new(PublisherMock), newNoopLogger())

		_, err := service.Activate(context.Background(), userUID)

		assert.ErrorIs(t, err, repository.ErrUserNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("publish failure does not fail activation", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		publisher := new(PublisherMock)

		repo.On("GetUser", mock.Anything, userUID).Return(user, nil).Once()
		repo.On("ActivateSubscription", mock.Anything, userUID, mock.AnythingOfType("time.Time")).Return(nil).Once()
		cacheMock.On("Invalidate", mock.Anything).Return(nil).Once()
		publisher.On("Publish", ActivatedRoutingKey, mock.Anything).Return(errors.New("broker unavailable")).Once()

		service := NewSubscriptionService(repo, cacheMock, publisher, newNoopLogger())

		_, err := service.Activate(context.Background(), userUID)

		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})
}

func TestSubscriptionService_Status(t *testing.T) {
	const userUID = "uid-1"
	cacheKey := "subscription:" + userUID

	t.Run("active subscription", func(t *testing.T) {
		ends := time.Now().UTC().Add(24 * time.Hour)
		user := &models.User{UID: userUID, IsSubscribed: true, SubscriptionEnds: &ends}

		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", cacheKey, mock.Anything).Return(false, nil, nil).Once()
		repo.On("GetUser", mock.Anything, userUID).Return(user, nil).Once()
		cacheMock.On("Set", cacheKey, mock.Anything, mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 0 && ttl <= statusCacheTTL
		})).Return(nil).Once()

		service := NewSubscriptionService(repo, cacheMock, new(PublisherMock), newNoopLogger())

		state, err := service.Status(context.Background(), userUID)

		require.NoError(t, err)
		assert.True(t, state.IsSubscribed)
		require.NotNil(t, state.SubscriptionEnds)
		assert.Equal(t, ends, *state.SubscriptionEnds)
		repo.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("expired subscription is lapsed on read", func(t *testing.T) {
		ends := time.Now().UTC().Add(-time.Minute)
		user := &models.User{UID: userUID, IsSubscribed: true, SubscriptionEnds: &ends}

		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", cacheKey, mock.Anything).Return(false, nil, nil).Once()
		repo.On("GetUser", mock.Anything, userUID).Return(user, nil).Once()
		repo.On("ClearSubscription", mock.Anything, userUID).Return(nil).Once()
		cacheMock.On("Set", cacheKey, mock.Anything, statusCacheTTL).Return(nil).Once()

		service := NewSubscriptionService(repo, cacheMock, new(PublisherMock), newNoopLogger())

		state, err := service.Status(context.Background(), userUID)

		require.NoError(t, err)
		assert.False(t, state.IsSubscribed)
		assert.Nil(t, state.SubscriptionEnds)
		repo.AssertExpectations(t)
	})

	t.Run("subscription ending exactly now is not lapsed", func(t *testing.T) {
		// граница: строго в прошлом, не "меньше или равно"
		ends := time.Now().UTC().Add(time.Second)
		user := &models.User{UID: userUID, IsSubscribed: true, SubscriptionEnds: &ends}

		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", cacheKey, mock.Anything).Return(false, nil, nil).Once()
		repo.On("GetUser", mock.Anything, userUID).Return(user, nil).Once()
		cacheMock.On("Set", cacheKey, mock.Anything, mock.Anything).Return(nil).Maybe()

		service := NewSubscriptionService(repo, cacheMock, new(PublisherMock), newNoopLogger())

		state, err := service.Status(context.Background(), userUID)

		require.NoError(t, err)
		assert.True(t, state.IsSubscribed)
		repo.AssertNotCalled(t, "ClearSubscription", mock.Anything, mock.Anything)
	})

	t.Run("never subscribed user", func(t *testing.T) {
		user := &models.User{UID: userUID, IsSubscribed: false, SubscriptionEnds: nil}

		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", cacheKey, mock.Anything).Return(false, nil, nil).Once()
		repo.On("GetUser", mock.Anything, userUID).Return(user, nil).Once()
		cacheMock.On("Set", cacheKey, mock.Anything, statusCacheTTL).Return(nil).Once()

		service := NewSubscriptionService(repo, cacheMock, new(PublisherMock), newNoopLogger())

		state, err := service.Status(context.Background(), userUID)

		require.NoError(t, err)
		assert.False(t, state.IsSubscribed)
		assert.Nil(t, state.SubscriptionEnds)
		repo.AssertNotCalled(t, "ClearSubscription", mock.Anything, mock.Anything)
	})

	t.Run("cache hit skips storage", func(t *testing.T) {
		cachedEnds := time.Now().UTC().Add(time.Hour)
		cached := &models.SubscriptionState{IsSubscribed: true, SubscriptionEnds: &cachedEnds}

		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", cacheKey, mock.Anything).Return(true, nil, cached).Once()

		service := NewSubscriptionService(repo, cacheMock, new(PublisherMock), newNoopLogger())

		state, err := service.Status(context.Background(), userUID)

		require.NoError(t, err)
		assert.True(t, state.IsSubscribed)
		repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", cacheKey, mock.Anything).Return(false, nil, nil).Once()
		repo.On("GetUser", mock.Anything, userUID).Return(nil, repository.ErrUserNotFound).Once()

		service := NewSubscriptionService(repo, cacheMock, new(PublisherMock), newNoopLogger())

		_, err := service.Status(context.Background(), userUID)

		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}
