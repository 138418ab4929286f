package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotWrapper адаптирует *tgbotapi.BotAPI к интерфейсу отправителя,
// чтобы в тестах транспорт можно было подменить.
type BotWrapper struct {
	api *tgbotapi.BotAPI
}

func NewBotWrapper(api *tgbotapi.BotAPI) *BotWrapper {
	return &BotWrapper{api: api}
}

func (w *BotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.api.Send(c)
}

func (w *BotWrapper) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return w.api.Request(c)
}

func (w *BotWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.api.GetUpdatesChan(config)
}

func (w *BotWrapper) GetSelf() tgbotapi.User {
	return w.api.Self
}

func (w *BotWrapper) StopReceivingUpdates() {
	w.api.StopReceivingUpdates()
}
