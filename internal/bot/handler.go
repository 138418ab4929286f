package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/spssppz/tennisOkt/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	ButtonBook       = "🎾 Записаться"
	ButtonMyBookings = "📋 Мои брони"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleMainMenu(ctx, update)
		case "admin":
			b.handleAdminReport(ctx, update)
		case "export":
			b.handleExport(ctx, update)
		default:
			b.sendMessage(msg.Chat.ID, "Неизвестная команда. Нажми /start.")
		}
		return
	}

	switch msg.Text {
	case ButtonBook:
		b.handleSelectDate(ctx, update)
	case ButtonMyBookings:
		b.showUserBookings(ctx, update)
	default:
		// Свободный текст в этом боте ничего не значит
		b.logger.Debug().Int64("user_id", msg.From.ID).Msg("Unhandled message text")
	}
}

// handleMainMenu - приветствие и постоянная клавиатура
func (b *Bot) handleMainMenu(ctx context.Context, update tgbotapi.Update) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonBook),
			tgbotapi.NewKeyboardButton(ButtonMyBookings),
		),
	)
	keyboard.ResizeKeyboard = true

	if _, err := b.tgService.SendWithKeyboard(update.Message.Chat.ID,
		"Привет! Нажми кнопку, чтобы записаться на теннис.", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send main menu")
	}

	b.setUserState(ctx, update.Message.From.ID, models.StateMainMenu, nil)
}

// handleSelectDate показывает даты ближайшей недели
func (b *Bot) handleSelectDate(ctx context.Context, update tgbotapi.Update) {
	days := b.bookingService.Days()

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, day := range days {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				formatDayLabel(day),
				"date_"+day.Format(models.DateLayout),
			),
		))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID, "Выбери дату:", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send date keyboard")
		return
	}

	b.setUserState(ctx, update.Message.From.ID, models.StateSelectDate, nil)
}

// showUserBookings показывает брони пользователя, каждую с кнопкой отмены
func (b *Bot) showUserBookings(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	keys, err := b.bookingService.UserBookings(ctx, update.Message.From.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", update.Message.From.ID).Msg("Failed to load user bookings")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(keys) == 0 {
		b.sendMessage(chatID, "У вас нет активных броней.")
		return
	}

	for _, key := range keys {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", "cancel_"+key.String()),
			),
		)
		text := fmt.Sprintf("📅 %s", strings.Replace(key.String(), " ", " в ", 1))
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
			b.logger.Error().Err(err).Msg("Failed to send booking entry")
		}
	}
}

// handleAdminReport - сводка всех записей, только для админа
func (b *Bot) handleAdminReport(ctx context.Context, update tgbotapi.Update) {
	if !b.isAdmin(update.Message.From.ID) {
		return
	}

	entries, err := b.bookingService.AllBookings(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load bookings for report")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if len(entries) == 0 {
		b.sendMessage(update.Message.Chat.ID, "Пока никто не записался.")
		return
	}

	var report strings.Builder
	report.WriteString("📋 Записи:\n\n")
	for _, entry := range entries {
		report.WriteString(fmt.Sprintf("📅 %s:\n", entry.Key.String()))
		for _, r := range entry.Reservations {
			report.WriteString(fmt.Sprintf("— %s (@%s)\n", r.Name, r.Username))
		}
		report.WriteString("\n")
	}

	b.sendMessage(update.Message.Chat.ID, report.String())
}
