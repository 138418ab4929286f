package google

import (
	"context"
	"fmt"
	"os"

	"github.com/spssppz/tennisOkt/internal/domain"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService зеркалит карту бронирований в Google-таблицу. Лист
// перезаписывается целиком при каждой синхронизации: снапшот маленький,
// а полная перезапись не оставляет осиротевших строк после отмен.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsService(credentialsFile, spreadsheetID, sheetName string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// ReplaceBookingsSheet полностью перезаписывает лист записями из снапшота
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, entries []domain.SlotEntry) error {
	clearRange := s.sheetName + "!A:E"
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear bookings sheet: %v", err)
	}

	values := [][]interface{}{
		{"Слот", "Дата", "Время", "Имя", "Username"},
	}
	for _, entry := range entries {
		for _, r := range entry.Reservations {
			values = append(values, []interface{}{
				entry.Key.String(),
				entry.Key.Date.Format("02.01.2006"),
				entry.Key.HourLabel(),
				r.Name,
				r.Username,
			})
		}
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1", valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update bookings sheet: %v", err)
	}

	return nil
}
