// Package sl содержит вспомогательные функции для формирования
// структурированных полей логгера slog: ошибки и идентификаторы
// пользователя логируются единообразно во всех сервисах.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Uid возвращает slog.Attr с ключом "uid" и идентификатором пользователя.
func Uid(uid string) slog.Attr {
	return slog.Attr{
		Key:   "uid",
		Value: slog.StringValue(uid),
	}
}
