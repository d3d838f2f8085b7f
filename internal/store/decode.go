package store

import (
	"strings"
	"time"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/utils"
)

// Alias des en-têtes du tableur (les libellés japonais sont ceux de la feuille d'origine)
var (
	productIDHeaders       = []string{"id", "ID", "No"}
	productNameHeaders     = []string{"name", "商品名", "品名"}
	productCategoryHeaders = []string{"category", "カテゴリ", "分類"}
	productPriceHeaders    = []string{"price", "単価", "価格"}
	productUnitHeaders     = []string{"unit", "単位"}
	productStockHeaders    = []string{"stockStatus", "在庫状況", "在庫"}
	productSupplierHeaders = []string{"supplier", "Supplier", "発注先", "業者", "仕入先"}
	productImageHeaders    = []string{"image", "画像", "画像URL"}

	employeeIDHeaders       = []string{"社員code", "id", "Code"}
	employeeNameHeaders     = []string{"氏名", "name", "Name"}
	employeeFactoryHeaders  = []string{"工場", "factory", "Factory"}
	employeeCodeNameHeaders = []string{"Code+Name", "codeName"}

	ledgerOrderIDHeaders  = []string{"OrderId", "orderId", "注文ID"}
	ledgerLineHeaders     = []string{"LineNo", "lineNo", "行"}
	ledgerDateHeaders     = []string{"Date", "timestamp", "日付"}
	ledgerOrdererHeaders  = []string{"Orderer", "orderer", "発注者"}
	ledgerSupplierHeaders = []string{"Supplier", "supplier", "業者", "発注先"}
	ledgerProductHeaders  = []string{"ProductName", "productName", "品名"}
	ledgerQtyHeaders      = []string{"Quantity", "quantity", "数量"}
	ledgerUnitHeaders     = []string{"Unit", "unit", "単位"}
	ledgerUrgentHeaders   = []string{"Urgent", "isUrgent", "至急"}
	ledgerStatusHeaders   = []string{"Status", "status", "状態"}
	ledgerRecvQtyHeaders  = []string{"ReceivedQty", "receivedQuantity", "納入数"}
	ledgerRecvAtHeaders   = []string{"ReceivedAt", "receivedAt", "納入日"}
)

// DecodeProduct construit un produit à partir d'une ligne brute du tableur
func DecodeProduct(row utils.Row) models.Product {
	unit := utils.LookupString(row, "", productUnitHeaders...)
	if unit == "" || unit == "1" {
		unit = models.DefaultUnit
	}
	return models.Product{
		ID:          utils.LookupString(row, "", productIDHeaders...),
		Name:        utils.LookupString(row, models.DefaultProductName, productNameHeaders...),
		Category:    utils.LookupString(row, models.DefaultCategory, productCategoryHeaders...),
		Price:       utils.LookupFloat(row, productPriceHeaders...),
		Unit:        unit,
		StockStatus: utils.LookupString(row, models.DefaultStockStatus, productStockHeaders...),
		Supplier:    utils.LookupString(row, models.DefaultSupplier, productSupplierHeaders...),
		Image:       utils.NormalizeDriveImage(utils.LookupString(row, "", productImageHeaders...)),
	}
}

// DecodeEmployees convertit les lignes brutes et ignore celles sans code
func DecodeEmployees(rows []utils.Row) []models.Employee {
	employees := make([]models.Employee, 0, len(rows))
	for _, row := range rows {
		e := models.Employee{
			ID:       utils.LookupString(row, "", employeeIDHeaders...),
			Name:     utils.LookupString(row, "", employeeNameHeaders...),
			Factory:  utils.LookupString(row, "", employeeFactoryHeaders...),
			CodeName: utils.LookupString(row, "", employeeCodeNameHeaders...),
		}
		if e.ID == "" {
			continue
		}
		employees = append(employees, e)
	}
	return employees
}

// DecodeLedgerRows convertit les lignes brutes du registre.
// Sans colonne LineNo, le numéro de ligne est la position dans la commande (à partir de 1).
func DecodeLedgerRows(raw []utils.Row) []models.LedgerRow {
	rows := make([]models.LedgerRow, 0, len(raw))
	seen := make(map[string]int)
	for _, r := range raw {
		orderID := utils.LookupString(r, "", ledgerOrderIDHeaders...)
		if orderID == "" {
			continue
		}
		seen[orderID]++
		lineNo := int(utils.LookupFloat(r, ledgerLineHeaders...))
		if lineNo <= 0 {
			lineNo = seen[orderID]
		}

		row := models.LedgerRow{
			OrderID:          orderID,
			LineNo:           lineNo,
			Timestamp:        parseSheetTime(utils.LookupString(r, "", ledgerDateHeaders...)),
			Orderer:          utils.LookupString(r, "", ledgerOrdererHeaders...),
			Supplier:         utils.LookupString(r, "", ledgerSupplierHeaders...),
			ProductName:      utils.LookupString(r, "", ledgerProductHeaders...),
			Quantity:         int(utils.LookupFloat(r, ledgerQtyHeaders...)),
			Unit:             utils.LookupString(r, "", ledgerUnitHeaders...),
			IsUrgent:         parseSheetBool(utils.LookupString(r, "", ledgerUrgentHeaders...)),
			Status:           models.RowStatus(utils.LookupString(r, string(models.RowPending), ledgerStatusHeaders...)),
			ReceivedQuantity: int(utils.LookupFloat(r, ledgerRecvQtyHeaders...)),
		}
		if at := parseSheetTime(utils.LookupString(r, "", ledgerRecvAtHeaders...)); !at.IsZero() {
			row.ReceivedAt = &at
		}
		rows = append(rows, row)
	}
	return rows
}

// EncodeLedgerRow produit la ligne à ajouter au tableur (colonnes du registre)
func EncodeLedgerRow(row models.LedgerRow) map[string]interface{} {
	out := map[string]interface{}{
		"OrderId":     row.OrderID,
		"LineNo":      row.LineNo,
		"Date":        row.Timestamp.Format(time.RFC3339),
		"Orderer":     row.Orderer,
		"Supplier":    row.Supplier,
		"ProductName": row.ProductName,
		"Quantity":    row.Quantity,
		"Unit":        row.Unit,
		"Urgent":      row.IsUrgent,
		"Status":      string(row.Status),
		"ReceivedQty": row.ReceivedQuantity,
		"ReceivedAt":  "",
	}
	if row.ReceivedAt != nil {
		out["ReceivedAt"] = row.ReceivedAt.Format(time.RFC3339)
	}
	return out
}

var sheetTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseSheetTime(s string) time.Time {
	for _, layout := range sheetTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseSheetBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "★", "至急":
		return true
	}
	return false
}
