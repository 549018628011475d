// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и состояние подписки.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта
	Username         string     // Имя пользователя (уникальное)
	PasswordHash     string     // Хэш пароля пользователя
	Role             string     // Роль пользователя, admin или user
	IsSubscribed     bool       // Признак активной платной подписки
	SubscriptionEnds *time.Time // Дата окончания подписки, nil — подписки нет
}

// SubscriptionState описывает состояние подписки пользователя,
// возвращаемое при запросе статуса и хранимое в кеше.
type SubscriptionState struct {
	IsSubscribed     bool       `json:"is_subscribed"`
	SubscriptionEnds *time.Time `json:"subscription_ends"`
}
