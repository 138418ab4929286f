package worker

import (
	"time"
)

// RetryPolicy задаёт экспоненциальную выдержку между попытками
// синхронизации зеркала.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay возвращает паузу перед попыткой attempt (нумерация с единицы).
// Пауза растёт в BackoffFactor раз с каждой попыткой, но не превышает MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	delay := r.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}

	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * factor)
		if r.MaxDelay > 0 && delay >= r.MaxDelay {
			return r.MaxDelay
		}
	}

	if delay <= 0 {
		return time.Second
	}
	return delay
}
