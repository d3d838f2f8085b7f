package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"supply_order_back_end/internal/models"
)

var (
	ErrCartNotFound = errors.New("panier introuvable")
	ErrLineNotFound = errors.New("produit absent du panier")
	ErrBadQuantity  = errors.New("quantité invalide")
)

// Cart est le panier d'une session. Il appartient à une seule session et ne
// survit qu'au TTL de son stockage.
type Cart struct {
	ID        string            `json:"id"`
	Lines     []models.CartLine `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Totals est le récapitulatif affiché dans le panier
type Totals struct {
	Amount    float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
	Lines     int     `json:"count"`
}

func (c *Cart) find(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add ajoute quantity unités du produit (nouvelle ligne ou ligne existante)
func (c *Cart) Add(p models.Product, quantity int) error {
	if quantity < 1 {
		return ErrBadQuantity
	}
	if i := c.find(p.ID); i >= 0 {
		c.Lines[i].Quantity += quantity
		return nil
	}
	c.Lines = append(c.Lines, models.CartLine{Product: p, Quantity: quantity})
	return nil
}

// UpdateQuantity applique un delta ; la ligne disparaît quand la quantité atteint 0
func (c *Cart) UpdateQuantity(productID string, delta int) error {
	i := c.find(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	return c.SetQuantity(productID, c.Lines[i].Quantity+delta)
}

// SetQuantity fixe la quantité ; 0 ou moins retire la ligne
func (c *Cart) SetQuantity(productID string, quantity int) error {
	i := c.find(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	}
	c.Lines[i].Quantity = quantity
	return nil
}

func (c *Cart) ToggleUrgency(productID string) error {
	i := c.find(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines[i].IsUrgent = !c.Lines[i].IsUrgent
	return nil
}

func (c *Cart) Remove(productID string) error {
	return c.SetQuantity(productID, 0)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Totals() Totals {
	amount := decimal.Zero
	t := Totals{Lines: len(c.Lines)}
	for _, l := range c.Lines {
		amount = amount.Add(decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		t.ItemCount += l.Quantity
	}
	t.Amount = amount.InexactFloat64()
	return t
}
