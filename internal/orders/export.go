package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"ID", "Customer", "Phone", "Address", "Reference", "Status", "Courier ID", "Created At", "Delivered At",
}

func exportRow(o Order) []string {
	courier := ""
	if o.CourierID != nil {
		courier = *o.CourierID
	}
	delivered := ""
	if o.DeliveredAt != nil {
		delivered = o.DeliveredAt.Format(time.RFC3339)
	}
	return []string{
		o.ID, o.CustomerName, o.CustomerPhone, o.DeliveryAddress, o.Reference,
		string(o.Status), courier, o.CreatedAt.Format(time.RFC3339), delivered,
	}
}

// WriteCSV streams the orders as a CSV document.
func WriteCSV(w io.Writer, orders []Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write(exportRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the orders as a single-sheet Excel workbook.
func WriteXLSX(w io.Writer, orders []Order) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	for i, o := range orders {
		for col, value := range exportRow(o) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("orders: write workbook: %w", err)
	}
	return nil
}
