// Package services содержит бизнес-логику для управления задачами пользователей,
// включая проверку квоты бесплатного тарифа при создании и постраничный поиск.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/todo-paywall/internal/models"
)

// ErrQuotaExceeded возвращается, когда неподписанный пользователь
// пытается создать задачу сверх лимита бесплатного тарифа.
var ErrQuotaExceeded = errors.New("free tier todo limit reached")

const (
	// FreeTierLimit максимальное число задач без подписки.
	FreeTierLimit = 3
	// PageSize размер страницы при листинге задач.
	PageSize = 10
)

// TodoRepository определяет методы для работы с задачами и их владельцами в хранилище.
type TodoRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// CountUserTodos возвращает общее число задач пользователя.
	CountUserTodos(ctx context.Context, userUID string) (int, error)
	// CreateTodo добавляет новую задачу и возвращает её.
	CreateTodo(ctx context.Context, userUID, title string) (*models.Todo, error)
	// ListTodos возвращает страницу задач пользователя по фильтру поиска.
	ListTodos(ctx context.Context, userUID, search string, limit, offset int) ([]*models.Todo, error)
	// CountTodos подсчитывает задачи пользователя по фильтру поиска.
	CountTodos(ctx context.Context, userUID, search string) (int, error)
	// ListAllTodos возвращает страницу задач всех пользователей.
	ListAllTodos(ctx context.Context, limit, offset int) ([]*models.Todo, error)
	// CountAllTodos возвращает общее число задач в системе.
	CountAllTodos(ctx context.Context) (int, error)
}

// TodoService реализует бизнес-логику работы с задачами.
type TodoService struct {
	repo TodoRepository
	log  *slog.Logger
}

// NewTodoService создает новый экземпляр TodoService.
func NewTodoService(repo TodoRepository, log *slog.Logger) *TodoService {
	return &TodoService{
		repo: repo,
		log:  log,
	}
}

// Create создает новую задачу пользователя, предварительно проверяя квоту
// бесплатного тарифа. Проверка счётчика и вставка — отдельные запросы без
// транзакции: одновременные вызовы одного пользователя могут оба пройти
// проверку, это принятое поведение.
func (s *TodoService) Create(ctx context.Context, userUID string, req models.DummyTodo) (*models.Todo, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountUserTodos(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if !user.IsSubscribed && count >= FreeTierLimit {
		return nil, ErrQuotaExceeded
	}

	todo, err := s.repo.CreateTodo(ctx, userUID, req.Title)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new todo", slog.Int("id", todo.ID), slog.String("user_uid", userUID))
	return todo, nil
}

// List возвращает страницу задач пользователя, заголовок которых содержит
// search без учёта регистра, от новых к старым.
func (s *TodoService) List(ctx context.Context, userUID string, page int, search string) (*models.TodoPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	todos, err := s.repo.ListTodos(ctx, userUID, search, PageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountTodos(ctx, userUID, search)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*models.Todo{}
	}
	return &models.TodoPage{
		Todos:       todos,
		CurrentPage: page,
		TotalPages:  (total + PageSize - 1) / PageSize,
	}, nil
}

// ListAll возвращает страницу задач всех пользователей. Используется администраторами.
func (s *TodoService) ListAll(ctx context.Context, page int) (*models.TodoPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	todos, err := s.repo.ListAllTodos(ctx, PageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountAllTodos(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*models.Todo{}
	}
	return &models.TodoPage{
		Todos:       todos,
		CurrentPage: page,
		TotalPages:  (total + PageSize - 1) / PageSize,
	}, nil
}
