package bot

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"gigswap-bot/internal/domain"
	"gigswap-bot/internal/storage"
)

// exportOwnListings выгружает все объявления пользователя в Excel-файл
// и отправляет его документом.
func (b *Bot) exportOwnListings(ctx context.Context, chatID int64) {
	owner := chatID
	listings, err := b.store.FindListings(ctx, storage.ListingFilter{OwnerChatID: &owner}, 0, 0)
	if err != nil {
		b.logger.Error("failed to fetch listings for export", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while exporting your listings. Please try again later.")
		return
	}

	if len(listings) == 0 {
		b.reply(chatID, "You have no listings.")
		return
	}

	buf, err := buildListingsWorkbook(listings)
	if err != nil {
		b.logger.Error("failed to build export workbook", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Failed to generate the Excel file.")
		return
	}

	fileName := fmt.Sprintf("my_listings_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Export complete. %d listing(s) attached.", len(listings))
	b.sendMessage(doc)
}

// buildListingsWorkbook формирует Excel-книгу со списком объявлений.
func buildListingsWorkbook(listings []domain.Listing) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Listings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headers := []string{"Event Name", "Quantity", "Event Date", "Location", "Category", "Price", "Share Token", "Last Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	// Ширина колонок подгоняется под самое широкое значение.
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	for rowIdx, l := range listings {
		values := []string{l.EventName, l.Quantity, l.EventDate, l.Location, l.Category, l.Price, l.ShareToken, l.UpdatedAt.Format("02-01-2006")}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
			if w := runewidth.StringWidth(v); w > widths[colIdx] {
				widths[colIdx] = w
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, float64(w)+2); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &buf, nil
}
