// Package adminlist реализует HTTP-обработчик для просмотра задач всех
// пользователей. Маршрут доступен только роли admin, проверка роли
// выполняется в middleware.
package adminlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/todo-paywall/internal/http/response"
	"github.com/magabrotheeeer/todo-paywall/internal/lib/sl"
	"github.com/magabrotheeeer/todo-paywall/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики листинга всех задач.
type Service interface {
	ListAll(ctx context.Context, page int) (*models.TodoPage, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список задач всех пользователей
// @Description Возвращает страницу задач всех пользователей. Только для администраторов.
// @Tags Admin
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Success 200 {object} map[string]any "Страница задач"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/todos [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.todo.adminlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	res, err := h.service.ListAll(r.Context(), page)
	if err != nil {
		log.Error("failed to list all todos", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list todos"))
		return
	}

	log.Info("list all todos", slog.Int("count", len(res.Todos)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"todos":        res.Todos,
		"current_page": res.CurrentPage,
		"total_pages":  res.TotalPages,
	}))
}
