// Package activate реализует HTTP-обработчик активации подписки пользователя.
//
// Обработчик извлекает uid пользователя из контекста, вызывает бизнес-логику
// активации и возвращает дату окончания подписки. Платёж не списывается.
//
// Неизвестный, но аутентифицированный пользователь намеренно получает 401,
// а не 404: он неотличим от запроса без аутентификации.
package activate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/todo-paywall/internal/http/middlewarectx"
	"github.com/magabrotheeeer/todo-paywall/internal/http/response"
	"github.com/magabrotheeeer/todo-paywall/internal/lib/sl"
	"github.com/magabrotheeeer/todo-paywall/internal/storage/repository"
)

// Handler управляет HTTP-запросами на активацию подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики активации подписки.
type Service interface {
	Activate(ctx context.Context, userUID string) (time.Time, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Активировать подписку
// @Description Включает подписку текущего пользователя на один календарный месяц.
// @Tags Subscription
// @Produce  json
// @Success 200 {object} map[string]any "Подписка активирована"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.activate"

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

	ends, err := h.service.Activate(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		log.Error("failed to activate subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not activate subscription"))
		return
	}

	log.Info("subscription activated", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":           "subscription activated successfully",
		"subscription_ends": ends,
	}))
}
