package models

const (
	StateMainMenu   = "main_menu"
	StateSelectDate = "select_date"
	StateSelectHour = "select_hour"
)

const (
	// DefaultWindowDays — скользящее окно бронирования: сегодня + 6 дней.
	DefaultWindowDays = 7

	// DefaultFirstHour и DefaultLastHour задают часы работы корта
	// (слоты 08:00..19:00 включительно).
	DefaultFirstHour = 8
	DefaultLastHour  = 19

	// DefaultRedisTTL время жизни состояния пользователя в Redis (секунды)
	DefaultRedisTTL = 24 * 60 * 60

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений (секунды)
	RateLimitWindow = 60

	// WorkerQueueSize размер очереди воркера синхронизации
	WorkerQueueSize = 256
)
