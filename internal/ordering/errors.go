package ordering

import (
	"errors"
	"fmt"
)

// ValidationError signale une requête rejetée avant tout accès au registre
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	ErrEmptyCart        = &ValidationError{Field: "items", Message: "le panier est vide"}
	ErrMissingRequester = &ValidationError{Field: "requesterId", Message: "demandeur manquant"}
	ErrUnknownRequester = &ValidationError{Field: "requesterId", Message: "demandeur inconnu"}
	ErrMixedSuppliers   = &ValidationError{Field: "items", Message: "une commande simple ne peut viser qu'un seul fournisseur"}

	ErrOrderNotFound    = errors.New("commande introuvable")
	ErrNothingToReceive = errors.New("aucune ligne en attente à réceptionner")
	ErrRateLimited      = errors.New("trop de commandes envoyées, réessayez dans un instant")
)

// IsValidation indique si err est un rejet de validation
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// PartialSubmitError est renvoyée quand l'ajout au registre échoue en cours de route.
// Les lignes déjà écrites restent en place.
type PartialSubmitError struct {
	OrderID     string
	RowsWritten int
	Err         error
}

func (e *PartialSubmitError) Error() string {
	return fmt.Sprintf("envoi interrompu sur %s après %d ligne(s): %v", e.OrderID, e.RowsWritten, e.Err)
}

func (e *PartialSubmitError) Unwrap() error { return e.Err }
