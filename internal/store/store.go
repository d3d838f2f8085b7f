package store

import (
	"context"
	"errors"
	"time"

	"supply_order_back_end/internal/models"
)

var (
	ErrNotFound      = errors.New("enregistrement introuvable")
	ErrAlreadyExists = errors.New("enregistrement déjà existant")
)

// ProductStore donne accès au catalogue produits
type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) error
	UpdateProduct(ctx context.Context, p models.Product) error
}

// EmployeeStore donne accès à la liste du personnel
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
}

// LedgerStore est le registre des commandes. Chaque écriture porte sur une seule ligne :
// aucune opération n'est atomique sur plusieurs lignes.
type LedgerStore interface {
	AppendRow(ctx context.Context, row models.LedgerRow) error
	ListRows(ctx context.Context) ([]models.LedgerRow, error)
	RowsByOrder(ctx context.Context, orderID string) ([]models.LedgerRow, error)
	MarkReceived(ctx context.Context, orderID string, lineNo int, at time.Time) error
}

// AuditStore conserve l'historique des modifications produits
type AuditStore interface {
	RecordAudit(ctx context.Context, e models.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Store regroupe tous les accès que propose un backend
type Store interface {
	ProductStore
	EmployeeStore
	LedgerStore
	AuditStore
}

// FindEmployee cherche un employé par code exact
func FindEmployee(ctx context.Context, s EmployeeStore, code string) (*models.Employee, error) {
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		if e.ID == code {
			emp := e
			return &emp, nil
		}
	}
	return nil, ErrNotFound
}
