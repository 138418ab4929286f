package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spssppz/tennisOkt/internal/domain"
	"github.com/spssppz/tennisOkt/internal/models"
	"github.com/spssppz/tennisOkt/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data

	switch {
	case strings.HasPrefix(data, "date_"):
		b.handleDateSelected(ctx, update, strings.TrimPrefix(data, "date_"))

	case strings.HasPrefix(data, "book_"):
		b.handleBookSlot(ctx, update)

	case strings.HasPrefix(data, "cancel_"):
		b.handleCancelSlot(ctx, update, strings.TrimPrefix(data, "cancel_"))

	default:
		b.logger.Warn().Str("data", data).Msg("Unknown callback data")
		b.answerCallback(callback.ID, "")
	}
}

// handleDateSelected показывает свободные часы для выбранной даты
func (b *Bot) handleDateSelected(ctx context.Context, update tgbotapi.Update, dateStr string) {
	callback := update.CallbackQuery
	chatID := callback.Message.Chat.ID

	date, err := time.ParseInLocation(models.DateLayout, dateStr, time.Local)
	if err != nil {
		b.logger.Warn().Str("date", dateStr).Msg("Malformed date in callback")
		b.answerCallback(callback.ID, "Эта кнопка устарела, начните заново.")
		return
	}

	hours, err := b.bookingService.AvailableHours(ctx, date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlot) {
			// Кнопка с прошлой недели
			b.answerCallback(callback.ID, "Эта дата уже недоступна, выберите другую.")
			return
		}
		b.logger.Error().Err(err).Str("date", dateStr).Msg("Failed to load available hours")
		b.sendMessage(chatID, b.getErrorMessage(err))
		b.answerCallback(callback.ID, "")
		return
	}

	if len(hours) == 0 {
		b.sendMessage(chatID, fmt.Sprintf("Все слоты на %s заняты. Выберите другую дату.", dateStr))
		b.answerCallback(callback.ID, "")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, hour := range hours {
		label := fmt.Sprintf("%02d:00", hour)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("book_%s_%s", dateStr, label)),
		))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID,
		fmt.Sprintf("Выбери время для %s:", dateStr), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send hour keyboard")
	}

	b.setUserState(ctx, callback.From.ID, models.StateSelectHour, map[string]interface{}{"date": dateStr})
	b.answerCallback(callback.ID, "")
}

// handleBookSlot записывает пользователя в слот из callback-данных
// вида "book_2025-06-08_09:00"
func (b *Bot) handleBookSlot(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	chatID := callback.Message.Chat.ID

	parts := strings.SplitN(callback.Data, "_", 3)
	if len(parts) != 3 {
		b.answerCallback(callback.ID, "Эта кнопка устарела, начните заново.")
		return
	}
	dateStr, hourLabel := parts[1], parts[2]

	key, err := models.ParseSlotKey(dateStr + " " + hourLabel)
	if err != nil {
		b.logger.Warn().Str("data", callback.Data).Msg("Malformed booking callback")
		b.answerCallback(callback.ID, "Эта кнопка устарела, начните заново.")
		return
	}

	actor := actorFromUser(callback.From)

	_, err = b.bookingService.Book(ctx, key.Date, key.Hour, actor)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyBooked) {
			b.answerCallback(callback.ID, "Вы уже записаны на этот слот.")
			return
		}
		if !errors.Is(err, service.ErrSlotTaken) && !errors.Is(err, service.ErrInvalidSlot) {
			b.logger.Error().Err(err).Str("slot", key.String()).Int64("user_id", actor.ID).Msg("Booking failed")
		}
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
		b.sendMessage(chatID, b.getErrorMessage(err))
		b.answerCallback(callback.ID, "")
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCreated.Inc()
	}

	b.clearUserState(ctx, actor.ID)
	b.sendMessage(chatID, fmt.Sprintf("✅ Вы записаны на %s в %s!", dateStr, hourLabel))
	b.answerCallback(callback.ID, "")
}

// handleCancelSlot снимает запись пользователя со слота
func (b *Bot) handleCancelSlot(ctx context.Context, update tgbotapi.Update, slotKeyStr string) {
	callback := update.CallbackQuery
	chatID := callback.Message.Chat.ID

	key, err := models.ParseSlotKey(slotKeyStr)
	if err != nil {
		b.logger.Warn().Str("slot", slotKeyStr).Msg("Malformed cancel callback")
		b.answerCallback(callback.ID, "Эта кнопка устарела, начните заново.")
		return
	}

	if err := b.bookingService.Cancel(ctx, key, callback.From.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrSlotEmpty):
			b.answerCallback(callback.ID, "Этот слот уже пуст.")
		case errors.Is(err, service.ErrNotYourSlot):
			b.answerCallback(callback.ID, "В этом слоте нет вашей записи.")
		default:
			b.logger.Error().Err(err).Str("slot", key.String()).Int64("user_id", callback.From.ID).Msg("Cancellation failed")
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.sendMessage(chatID, b.getErrorMessage(err))
			b.answerCallback(callback.ID, "")
		}
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCancelled.Inc()
	}

	b.sendMessage(chatID, fmt.Sprintf("❌ Ваша запись на %s отменена.",
		strings.Replace(key.String(), " ", " в ", 1)))
	b.answerCallback(callback.ID, "")
}

func actorFromUser(user *tgbotapi.User) domain.Actor {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	return domain.Actor{
		ID:       user.ID,
		Name:     name,
		Username: user.UserName,
	}
}
