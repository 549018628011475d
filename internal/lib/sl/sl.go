// Package sl содержит мелкие помощники для логгера slog.
package sl

import "log/slog"

// Err оборачивает ошибку в slog.Attr с ключом "error", чтобы все
// обработчики логировали ошибки одним и тем же полем:
//
//	log.Error("failed to create todo", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
