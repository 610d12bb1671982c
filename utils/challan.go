package utils

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/codigix/Aluminium-erp-sub006/models"
)

// RenderChallanWorkbook builds the delivery challan document as an xlsx
// workbook so it can be downloaded or mailed as an attachment.
func RenderChallanWorkbook(challan *models.DeliveryChallan) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Delivery Challan")
	f.SetCellValue(sheet, "A2", "Challan No")
	f.SetCellValue(sheet, "B2", challan.ChallanNo)
	f.SetCellValue(sheet, "A3", "Challan Date")
	f.SetCellValue(sheet, "B3", challan.ChallanDate)
	f.SetCellValue(sheet, "A4", "Customer")
	f.SetCellValue(sheet, "B4", challan.CustomerName)
	f.SetCellValue(sheet, "A5", "Shipping Address")
	f.SetCellValue(sheet, "B5", challan.ShippingAddress)

	f.SetCellValue(sheet, "A7", "Item Code")
	f.SetCellValue(sheet, "B7", "Item Name")
	f.SetCellValue(sheet, "C7", "Quantity")
	f.SetCellValue(sheet, "D7", "UOM")
	f.SetCellValue(sheet, "E7", "Whs Code")

	for i, item := range challan.Items {
		row := i + 8
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.ItemCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.ItemName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Quantity.String())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Uom)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.WhsCode)
	}

	return f, nil
}
