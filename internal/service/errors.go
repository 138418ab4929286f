package service

import "errors"

// Ожидаемые исходы бронирования. Это не сбои: бот переводит их в обычные
// ответы пользователю.
var (
	// ErrInvalidSlot — дата или час вне окна бронирования (устаревшая или
	// подделанная кнопка).
	ErrInvalidSlot = errors.New("slot outside booking window")

	// ErrAlreadyBooked — пользователь уже записан в этот слот.
	ErrAlreadyBooked = errors.New("user already booked this slot")

	// ErrSlotTaken — слот занят другим пользователем. Возможен даже после
	// показа свободных слотов: два человека могли выбрать один час
	// одновременно.
	ErrSlotTaken = errors.New("slot taken by another user")

	// ErrSlotEmpty — отменять нечего.
	ErrSlotEmpty = errors.New("slot has no reservations")

	// ErrNotYourSlot — в слоте есть записи, но не этого пользователя.
	ErrNotYourSlot = errors.New("slot is not reserved by this user")

	// ErrSaveFailed — переход выполнен в памяти, но снапшот мог не
	// сохраниться.
	ErrSaveFailed = errors.New("booking snapshot save failed")
)
