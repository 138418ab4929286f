package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

// handleExport отдаёт админу Excel-файл со всеми записями
func (b *Bot) handleExport(ctx context.Context, update tgbotapi.Update) {
	if !b.isAdmin(update.Message.From.ID) {
		return
	}

	filePath, err := b.exportToExcel(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Excel export failed")
		b.sendMessage(update.Message.Chat.ID, "❌ Не удалось сформировать файл экспорта.")
		return
	}

	doc := tgbotapi.NewDocument(update.Message.Chat.ID, tgbotapi.FilePath(filePath))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Str("file_path", filePath).Msg("Failed to send export file")
		b.sendMessage(update.Message.Chat.ID, "❌ Не удалось отправить файл экспорта.")
	}
}

// exportToExcel создает Excel файл с данными о бронированиях
func (b *Bot) exportToExcel(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	entries, err := b.bookingService.AllBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Записи"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Слот", "Имя", "Username", "ID пользователя"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "D1", headerStyle)

	row := 2
	for _, entry := range entries {
		for _, r := range entry.Reservations {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.Key.String())
			_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Name)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Username)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.ID)
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 20)
	_ = f.SetColWidth(sheetName, "B", "C", 25)
	_ = f.SetColWidth(sheetName, "D", "D", 16)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}
