// Package services содержит бизнес-логику управления подпиской пользователя:
// активацию на один календарный месяц и ленивое погашение истекшей подписки
// при чтении статуса.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/todo-paywall/internal/models"
)

const (
	statusCacheTTL = time.Hour

	// ActivatedRoutingKey ключ маршрутизации события активации подписки.
	ActivatedRoutingKey = "subscription.activated"
)

// UserRepository определяет методы для работы с подпиской пользователя в хранилище.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ActivateSubscription включает подписку до указанной даты.
	ActivateSubscription(ctx context.Context, userUID string, ends time.Time) error
	// ClearSubscription сбрасывает истекшую подписку.
	ClearSubscription(ctx context.Context, userUID string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EventPublisher публикует события подписки для внешних потребителей.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// ActivatedEvent тело события об активации подписки.
type ActivatedEvent struct {
	UserUID          string    `json:"user_uid"`
	SubscriptionEnds time.Time `json:"subscription_ends"`
}

// SubscriptionService реализует бизнес-логику подписки, включая кеширование статуса.
type SubscriptionService struct {
	repo   UserRepository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo UserRepository, cache Cache, events EventPublisher, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
	}
}

// Activate включает подписку пользователя на один календарный месяц от
// текущего момента. Платёж не списывается: операция безусловна и заменяет
// полноценный платёжный поток.
func (s *SubscriptionService) Activate(ctx context.Context, userUID string) (time.Time, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return time.Time{}, err
	}

	// timestamptz хранит микросекунды: усечение гарантирует, что возвращённая
	// дата байт в байт совпадает с сохранённой.
	ends := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Microsecond)
	if err := s.repo.ActivateSubscription(ctx, user.UID, ends); err != nil {
		return time.Time{}, err
	}
	s.log.Info("subscription activated",
		slog.String("user_uid", user.UID), slog.Time("subscription_ends", ends))

	cacheKey := statusCacheKey(user.UID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate status cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	event := ActivatedEvent{UserUID: user.UID, SubscriptionEnds: ends}
	if err := s.events.Publish(ActivatedRoutingKey, event); err != nil {
		s.log.Warn("failed to publish activation event", slog.String("user_uid", user.UID), slog.Any("err", err))
	}

	return ends, nil
}

// Status возвращает состояние подписки пользователя. Если срок подписки
// строго в прошлом, подписка погашается прямо здесь: в хранилище пишется
// is_subscribed = false, subscription_ends = NULL, и возвращается уже
// погашенное состояние. Других механизмов истечения нет.
func (s *SubscriptionService) Status(ctx context.Context, userUID string) (*models.SubscriptionState, error) {
	cacheKey := statusCacheKey(userUID)
	var cached models.SubscriptionState
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		return nil, err
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	state := models.SubscriptionState{
		IsSubscribed:     user.IsSubscribed,
		SubscriptionEnds: user.SubscriptionEnds,
	}
	if user.SubscriptionEnds != nil && user.SubscriptionEnds.Before(time.Now()) {
		if err := s.repo.ClearSubscription(ctx, user.UID); err != nil {
			return nil, err
		}
		s.log.Info("subscription lapsed", slog.String("user_uid", user.UID))
		state = models.SubscriptionState{IsSubscribed: false, SubscriptionEnds: nil}
	}

	// TTL не переживает срок подписки, чтобы кеш не скрыл её истечение.
	ttl := statusCacheTTL
	if state.SubscriptionEnds != nil {
		if until := time.Until(*state.SubscriptionEnds); until < ttl {
			ttl = until
		}
	}
	if ttl > 0 {
		if err := s.cache.Set(cacheKey, state, ttl); err != nil {
			s.log.Warn("failed to cache status", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}

	return &state, nil
}

func statusCacheKey(userUID string) string {
	return fmt.Sprintf("subscription:%s", userUID)
}
