package ordering

import (
	"github.com/shopspring/decimal"

	"supply_order_back_end/internal/models"
)

// GroupBySupplier répartit les lignes du panier par fournisseur.
// Les groupes suivent l'ordre de première apparition du fournisseur et reçoivent base-1, base-2, ...
// La comparaison des fournisseurs est exacte (pas de normalisation).
func GroupBySupplier(lines []models.CartLine, base string) []models.OrderGroup {
	var groups []models.OrderGroup
	index := make(map[string]int)

	for _, line := range lines {
		supplier := line.Product.SupplierOrDefault()
		i, ok := index[supplier]
		if !ok {
			i = len(groups)
			index[supplier] = i
			groups = append(groups, models.OrderGroup{
				ID:       GroupOrderID(base, i+1),
				Supplier: supplier,
			})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}

	for i := range groups {
		groups[i].Subtotal = Subtotal(groups[i].Lines)
	}
	return groups
}

// SingleSupplierGroup construit l'unique groupe d'un envoi simple (identifiant = base)
func SingleSupplierGroup(lines []models.CartLine, base string) (models.OrderGroup, error) {
	if len(lines) == 0 {
		return models.OrderGroup{}, ErrEmptyCart
	}
	supplier := lines[0].Product.SupplierOrDefault()
	for _, line := range lines[1:] {
		if line.Product.SupplierOrDefault() != supplier {
			return models.OrderGroup{}, ErrMixedSuppliers
		}
	}
	return models.OrderGroup{
		ID:       base,
		Supplier: supplier,
		Lines:    append([]models.CartLine(nil), lines...),
		Subtotal: Subtotal(lines),
	}, nil
}

// Subtotal somme prix unitaire × quantité en décimal puis revient en float64
func Subtotal(lines []models.CartLine) float64 {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.Product.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.InexactFloat64()
}
