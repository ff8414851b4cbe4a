package export

import (
	"fmt"
	"io"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var columns = []string{
	"Booking ID", "Item", "Type", "Traveler", "Email", "Phone",
	"Guests", "Travel Date", "Amount", "Currency", "Status", "Created At",
}

// WriteBookingsReport renders bookings into an xlsx workbook for the admin
// console download.
func WriteBookingsReport(w io.Writer, bookings []*models.Booking, startDate, endDate time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings: %s - %s",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	_ = f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	for i, header := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle)

	for i, b := range bookings {
		row := i + 3
		values := []any{
			b.ID,
			b.Item.Name,
			string(b.ItemType),
			b.Traveler.FullName,
			b.Traveler.Email,
			b.Traveler.Phone,
			b.Traveler.GuestCount,
			b.TravelDate.Format("2006-01-02"),
			b.ComputedAmount,
			b.Currency,
			string(b.Status),
			b.CreatedAt.Format(time.RFC3339),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", lastCol, 18)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
