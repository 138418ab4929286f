package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reservation — одна запись пользователя на слот. Имена JSON-полей —
// это формат хранения в bookings.json, менять их нельзя.
type Reservation struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// BookingMap связывает ключ слота ("2025-06-10 09:00") со списком записей
// в порядке бронирования. Это весь персистентный агрегат.
type BookingMap map[string][]Reservation

// Clone возвращает глубокую копию карты.
func (m BookingMap) Clone() BookingMap {
	if m == nil {
		return BookingMap{}
	}
	out := make(BookingMap, len(m))
	for key, seq := range m {
		out[key] = append([]Reservation(nil), seq...)
	}
	return out
}

// HasUser проверяет, есть ли у пользователя запись в слоте.
func (m BookingMap) HasUser(key string, userID int64) bool {
	for _, r := range m[key] {
		if r.ID == userID {
			return true
		}
	}
	return false
}

const (
	// DateLayout — формат дат в ключах слотов и callback-данных.
	DateLayout = "2006-01-02"
)

// SlotKey идентифицирует один часовой слот.
type SlotKey struct {
	Date time.Time // день, время обнулено
	Hour int
}

// NewSlotKey обнуляет время у даты и возвращает ключ.
func NewSlotKey(date time.Time, hour int) SlotKey {
	return SlotKey{
		Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		Hour: hour,
	}
}

// String возвращает персистентный вид ключа: "YYYY-MM-DD HH:00".
func (k SlotKey) String() string {
	return fmt.Sprintf("%s %02d:00", k.Date.Format(DateLayout), k.Hour)
}

// HourLabel возвращает час в виде "09:00" для кнопок и сообщений.
func (k SlotKey) HourLabel() string {
	return fmt.Sprintf("%02d:00", k.Hour)
}

// ParseSlotKey разбирает строку вида "YYYY-MM-DD HH:MM".
func ParseSlotKey(s string) (SlotKey, error) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) != 2 {
		return SlotKey{}, fmt.Errorf("invalid slot key: %q", s)
	}

	date, err := time.ParseInLocation(DateLayout, parts[0], time.Local)
	if err != nil {
		return SlotKey{}, fmt.Errorf("invalid slot key date: %w", err)
	}

	hm := strings.SplitN(parts[1], ":", 2)
	if len(hm) != 2 {
		return SlotKey{}, fmt.Errorf("invalid slot key time: %q", parts[1])
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 0 || hour > 23 {
		return SlotKey{}, fmt.Errorf("invalid slot key hour: %q", hm[0])
	}

	return SlotKey{Date: date, Hour: hour}, nil
}
