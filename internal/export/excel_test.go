package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookingsReport(t *testing.T) {
	bookings := []*models.Booking{
		{
			ID:       "bk-1",
			ItemType: models.ItemTypeTrek,
			Item:     models.ItemRef{Name: "Annapurna Base Camp Trek", Slug: "annapurna-base-camp"},
			Traveler: models.TravelerInfo{
				FullName:   "Asha Gurung",
				Email:      "asha@example.com",
				GuestCount: 2,
			},
			TravelDate:     time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			ComputedAmount: 179800,
			Currency:       "USD",
			Status:         models.StatusPaid,
			CreatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	err := WriteBookingsReport(&buf, bookings,
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Bookings: 2026-10-01 - 2026-10-31", title)

	header, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Booking ID", header)

	id, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", id)

	status, err := f.GetCellValue(sheetName, "K3")
	require.NoError(t, err)
	assert.Equal(t, "paid", status)
}

func TestWriteBookingsReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBookingsReport(&buf, nil,
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
