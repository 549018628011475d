// Package models содержит доменные структуры задач (todo),
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Todo представляет собой задачу пользователя,
// используемую в бизнес-логике и хранилище.
type Todo struct {
	ID        int       `json:"id"`         // Идентификатор задачи
	Title     string    `json:"title"`      // Текст задачи
	UserUID   string    `json:"user_uid"`   // Идентификатор владельца
	CreatedAt time.Time `json:"created_at"` // Дата создания
}

// DummyTodo используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Todo. Поле Title намеренно
// без правил валидации: пустые и сколь угодно длинные заголовки допустимы.
type DummyTodo struct {
	Title string `json:"title"`
}

// TodoPage представляет одну страницу списка задач вместе
// с номером запрошенной страницы и общим числом страниц.
type TodoPage struct {
	Todos       []*Todo `json:"todos"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
}
