package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDraft_Listing(t *testing.T) {
	d := &Draft{
		EventName: "Concert",
		Quantity:  "2",
		EventDate: "31-12-2024",
		Location:  "Arena",
		Category:  "VIP",
		Price:     "100",
	}
	now := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)

	got := d.Listing(42, "tok-1", now)

	assert.Equal(t, Listing{
		OwnerChatID: 42,
		EventName:   "Concert",
		Quantity:    "2",
		EventDate:   "31-12-2024",
		Location:    "Arena",
		Category:    "VIP",
		Price:       "100",
		ShareToken:  "tok-1",
		UpdatedAt:   now,
	}, got)

	// ID присваивается хранилищем, а не черновиком
	assert.Empty(t, got.ID)
}
