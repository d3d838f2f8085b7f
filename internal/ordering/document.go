package ordering

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/utils"
)

const (
	documentDateLayout = "2006/01/02"
	qrCodeSize         = 256
)

// Renderer produit le bon de commande d'un groupe
type Renderer interface {
	Render(ctx context.Context, doc utils.OrderDocument) (*utils.RenderedDocument, error)
}

// CompanyInfo est l'en-tête société imprimé sur les bons
type CompanyInfo struct {
	Name  string
	Sites []string
}

// PreparedGroup est un groupe prêt à être écrit : QR et document déjà générés
type PreparedGroup struct {
	Group    models.OrderGroup
	Payload  models.CodePayload
	QRCode   []byte
	Document *utils.RenderedDocument
}

// BuildCodePayload construit le contenu du QR code d'un groupe
func BuildCodePayload(g models.OrderGroup, requester models.Employee, at time.Time) models.CodePayload {
	return models.CodePayload{
		ID:          g.ID,
		RequesterID: requester.ID,
		Total:       g.Subtotal,
		ItemCount:   g.ItemCount(),
		Date:        at.Format(documentDateLayout),
		Supplier:    g.Supplier,
	}
}

// EncodeQRCode sérialise le contenu et le rend en PNG
func EncodeQRCode(payload models.CodePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return utils.GenerateQRCode(string(raw), qrCodeSize)
}

// PrepareDocument génère QR et bon de commande d'un groupe. Une erreur ici doit
// empêcher l'envoi du groupe.
func PrepareDocument(ctx context.Context, r Renderer, g models.OrderGroup, requester models.Employee, at time.Time, company CompanyInfo) (PreparedGroup, error) {
	for _, line := range g.Lines {
		if line.Product.Name == "" {
			return PreparedGroup{}, fmt.Errorf("groupe %s: produit %s sans nom", g.ID, line.Product.ID)
		}
	}

	payload := BuildCodePayload(g, requester, at)
	png, err := EncodeQRCode(payload)
	if err != nil {
		return PreparedGroup{}, fmt.Errorf("QR code %s: %w", g.ID, err)
	}

	doc := utils.OrderDocument{
		OrderID:       g.ID,
		Date:          payload.Date,
		Supplier:      g.Supplier,
		RequesterName: requester.DisplayName(),
		Factory:       requester.Factory,
		CompanyName:   company.Name,
		CompanySites:  company.Sites,
		QRDataURI:     template.URL(utils.QRDataURI(png)),
	}
	for _, line := range g.Lines {
		doc.Lines = append(doc.Lines, utils.DocumentLine{
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Unit:        line.Product.Unit,
			IsUrgent:    line.IsUrgent,
		})
	}

	rendered, err := r.Render(ctx, doc)
	if err != nil {
		return PreparedGroup{}, err
	}
	return PreparedGroup{Group: g, Payload: payload, QRCode: png, Document: rendered}, nil
}
