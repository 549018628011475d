package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/todo-paywall/internal/http/middlewarectx"
	"github.com/magabrotheeeer/todo-paywall/internal/http/response"
	"github.com/magabrotheeeer/todo-paywall/internal/lib/sl"
	"github.com/magabrotheeeer/todo-paywall/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики листинга задач.
type Service interface {
	List(ctx context.Context, userUID string, page int, search string) (*models.TodoPage, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список задач пользователя
// @Description Возвращает страницу задач текущего пользователя с поиском по подстроке заголовка.
// @Tags Todos
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Param search query string false "Подстрока для поиска в заголовке"
// @Success 200 {object} map[string]any "Страница задач"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /todos [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.todo.list"

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

	// Любое некорректное значение page молча превращается в первую страницу.
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	search := r.URL.Query().Get("search")

	res, err := h.service.List(r.Context(), userUID, page, search)
	if err != nil {
		log.Error("failed to list todos", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list todos"))
		return
	}

	log.Info("list todos", slog.Int("count", len(res.Todos)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"todos":        res.Todos,
		"current_page": res.CurrentPage,
		"total_pages":  res.TotalPages,
	}))
}
