// Package status реализует HTTP-обработчик получения статуса подписки.
//
// Чтение статуса — единственная точка, в которой истекшая подписка
// погашается: бизнес-логика при необходимости сбрасывает её в хранилище
// и возвращает уже погашенное состояние.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/todo-paywall/internal/http/middlewarectx"
	"github.com/magabrotheeeer/todo-paywall/internal/http/response"
	"github.com/magabrotheeeer/todo-paywall/internal/lib/sl"
	"github.com/magabrotheeeer/todo-paywall/internal/models"
	"github.com/magabrotheeeer/todo-paywall/internal/storage/repository"
)

// Handler управляет HTTP-запросами статуса подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики статуса подписки.
type Service interface {
	Status(ctx context.Context, userUID string) (*models.SubscriptionState, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус подписки
// @Description Возвращает текущее состояние подписки пользователя, погашая истекшую.
// @Tags Subscription
// @Produce  json
// @Success 200 {object} map[string]any "Состояние подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	state, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		log.Error("failed to get subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get subscription status"))
		return
	}

	log.Info("subscription status", slog.Bool("is_subscribed", state.IsSubscribed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"is_subscribed":     state.IsSubscribed,
		"subscription_ends": state.SubscriptionEnds,
	}))
}
