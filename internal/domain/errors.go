package domain

import "errors"

// Классы ошибок. Ошибки пакетов оборачивают один из них,
// поэтому вызывающий код может проверять и конкретную ошибку, и её класс через errors.Is
var (
	// ErrValidation некорректные входные данные. Восстанавливается повтором шага
	ErrValidation = errors.New("validation error")

	// ErrNotFound сущность не найдена или неактивна
	ErrNotFound = errors.New("not found")

	// ErrConflict слот уже занят
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition недопустимый переход статуса записи
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPersistence ошибка хранилища
	ErrPersistence = errors.New("persistence error")
)
