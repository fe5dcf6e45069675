package common

import "errors"

// Общие ошибки для всех репозиториев
var (
	ErrNotFound = errors.New("entity not found")
	// ErrStatusConflict возвращается, когда условное обновление не затронуло
	// ни одной строки: текущее состояние сущности уже не удовлетворяет
	// предусловию перехода.
	ErrStatusConflict = errors.New("status precondition failed")
)
