package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/todo-paywall/internal/models"
)

// likeEscaper экранирует спецсимволы шаблона LIKE, чтобы строка поиска
// трактовалась как буквальная подстрока.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CreateTodo вставляет новую задачу и возвращает её вместе с присвоенным ID и датой создания.
func (s *Storage) CreateTodo(ctx context.Context, userUID, title string) (*models.Todo, error) {
	const op = "storage.CreateTodo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO todos (title, user_uid)
			  VALUES ($1, $2)
			  RETURNING id, created_at`
	var id int
	var createdAt time.Time
	err := s.DB.QueryRowContext(ctx, query, title, userUID).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Todo{
		ID:        id,
		Title:     title,
		UserUID:   userUID,
		CreatedAt: createdAt,
	}, nil
}

// CountUserTodos возвращает общее число задач пользователя.
func (s *Storage) CountUserTodos(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountUserTodos"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM todos WHERE user_uid = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListTodos возвращает задачи пользователя, чей заголовок содержит search
// без учёта регистра, от новых к старым, с пагинацией.
func (s *Storage) ListTodos(ctx context.Context, userUID, search string, limit, offset int) ([]*models.Todo, error) {
	const op = "storage.ListTodos"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, user_uid, created_at
			  FROM todos
			  WHERE user_uid = $1
			    AND title ILIKE '%' || $2 || '%'
			  ORDER BY created_at DESC
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, likeEscaper.Replace(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Todo
	for rows.Next() {
		var item models.Todo
		if err := rows.Scan(&item.ID, &item.Title, &item.UserUID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountTodos подсчитывает задачи пользователя, попадающие под фильтр поиска.
func (s *Storage) CountTodos(ctx context.Context, userUID, search string) (int, error) {
	const op = "storage.CountTodos"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM todos
			  WHERE user_uid = $1
			    AND title ILIKE '%' || $2 || '%'`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID, likeEscaper.Replace(search)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListAllTodos возвращает задачи всех пользователей с пагинацией.
func (s *Storage) ListAllTodos(ctx context.Context, limit, offset int) ([]*models.Todo, error) {
	const op = "storage.ListAllTodos"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, user_uid, created_at
			  FROM todos
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Todo
	for rows.Next() {
		var item models.Todo
		if err := rows.Scan(&item.ID, &item.Title, &item.UserUID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountAllTodos возвращает общее число задач в системе.
func (s *Storage) CountAllTodos(ctx context.Context) (int, error) {
	const op = "storage.CountAllTodos"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
