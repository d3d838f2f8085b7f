package models

type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	IsUrgent bool    `json:"isUrgent"`
}

// LineTotal = prix unitaire × quantité
func (l CartLine) LineTotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}
