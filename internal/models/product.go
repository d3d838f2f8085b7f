package models

import "time"

// Valeurs par défaut appliquées quand une colonne du catalogue est vide
const (
	DefaultProductName = "名称未設定"
	DefaultCategory    = "未分類"
	DefaultUnit        = "個"
	DefaultSupplier    = "未設定"
	DefaultStockStatus = "In Stock"
	AdminCategory      = "共通"
)

type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Unit        string     `json:"unit"`
	Supplier    string     `json:"supplier"`
	StockStatus string     `json:"stockStatus"`
	Image       string     `json:"image,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// SupplierOrDefault retourne le fournisseur, ou le libellé "non renseigné"
func (p Product) SupplierOrDefault() string {
	if p.Supplier == "" {
		return DefaultSupplier
	}
	return p.Supplier
}
