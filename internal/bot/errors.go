package bot

import (
	"errors"

	"github.com/spssppz/tennisOkt/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, service.ErrSlotTaken) {
		return "⚠️ Этот слот уже занят. Пожалуйста, выберите другое время."
	}

	if errors.Is(err, service.ErrInvalidSlot) {
		return "⚠️ Это время уже недоступно для записи. Выберите дату заново."
	}

	if errors.Is(err, service.ErrAlreadyBooked) {
		return "Вы уже записаны на этот слот."
	}

	if errors.Is(err, service.ErrSaveFailed) {
		return "⚠️ Не удалось сохранить изменения. Пожалуйста, проверьте свои брони и попробуйте еще раз."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
}
