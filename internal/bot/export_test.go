package bot

import (
	"bytes"
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gigswap-bot/internal/domain"
)

func TestBuildListingsWorkbook(t *testing.T) {
	updated := time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)
	listings := []domain.Listing{
		{
			EventName:  "Concert",
			Quantity:   "2",
			EventDate:  "31-12-2024",
			Location:   "Arena",
			Category:   "VIP",
			Price:      "100",
			ShareToken: "tok-1",
			UpdatedAt:  updated,
		},
		{
			EventName:  "Festival",
			Quantity:   "4",
			EventDate:  "01-06-2025",
			Location:   "Park",
			Category:   "General standing",
			Price:      "55",
			ShareToken: "tok-2",
			UpdatedAt:  updated,
		},
	}

	buf, err := buildListingsWorkbook(listings)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Listings")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t,
		[]string{"Event Name", "Quantity", "Event Date", "Location", "Category", "Price", "Share Token", "Last Updated"},
		rows[0])
	assert.Equal(t,
		[]string{"Concert", "2", "31-12-2024", "Arena", "VIP", "100", "tok-1", "31-12-2024"},
		rows[1])
	assert.Equal(t,
		[]string{"Festival", "4", "01-06-2025", "Park", "General standing", "55", "tok-2", "31-12-2024"},
		rows[2])

	// Стандартный лист удален
	assert.Equal(t, []string{"Listings"}, f.GetSheetList())
}

func TestBot_ExportOwnListings(t *testing.T) {
	t.Run("sends a document with own listings", func(t *testing.T) {
		b, store, _ := newTestBot(t)
		ctx := context.Background()
		chatID := int64(100)

		var docs []tgbotapi.DocumentConfig
		b.sendMessageFunc = func(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
			if dc, ok := msg.(tgbotapi.DocumentConfig); ok {
				docs = append(docs, dc)
			}
			return tgbotapi.Message{}, nil
		}

		_, err := store.InsertListing(ctx, domain.Listing{OwnerChatID: chatID, EventName: "Concert"})
		require.NoError(t, err)
		_, err = store.InsertListing(ctx, domain.Listing{OwnerChatID: 999, EventName: "Other"})
		require.NoError(t, err)

		b.handleMessage(ctx, commandMessage(chatID, "/export"))

		require.Len(t, docs, 1)
		assert.Equal(t, chatID, docs[0].ChatID)
		assert.Equal(t, "Export complete. 1 listing(s) attached.", docs[0].Caption)

		file, ok := docs[0].File.(tgbotapi.FileBytes)
		require.True(t, ok)
		assert.Contains(t, file.Name, "my_listings_")
		assert.NotEmpty(t, file.Bytes)
	})

	t.Run("nothing to export", func(t *testing.T) {
		b, _, sent := newTestBot(t)

		b.handleMessage(context.Background(), commandMessage(200, "/export"))
		assert.Equal(t, "You have no listings.", lastMessageFor(t, *sent, 200))
	})
}
