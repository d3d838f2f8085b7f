package services

import (
	"context"
	"log"

	"supply_order_back_end/internal/ordering"
	"supply_order_back_end/internal/utils"
)

// OrderMailer envoie la notification d'un groupe avec son bon en pièce jointe
type OrderMailer struct {
	SMTP       utils.SMTPConfig
	Recipients []string
	BaseURL    string
}

func (m *OrderMailer) NotifyOrder(ctx context.Context, n ordering.Notification) error {
	data := utils.OrderMailData{
		OrderID:       n.Group.ID,
		Date:          n.Payload.Date,
		Supplier:      n.Group.Supplier,
		RequesterName: n.Requester.DisplayName(),
		Factory:       n.Requester.Factory,
		Subtotal:      n.Group.Subtotal,
		ItemCount:     n.Payload.ItemCount,
	}
	if m.BaseURL != "" {
		data.DetailURL = m.BaseURL + "/api/orders/" + n.Group.ID + "/document"
	}
	for _, line := range n.Group.Lines {
		data.Lines = append(data.Lines, utils.DocumentLine{
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Unit:        line.Product.Unit,
			IsUrgent:    line.IsUrgent,
		})
	}

	html, err := utils.RenderOrderMail(data)
	if err != nil {
		return err
	}

	var attachments []utils.Attachment
	if n.Document != nil {
		attachments = append(attachments, utils.Attachment{Name: n.Document.FileName, Data: n.Document.Data})
	}
	if err := utils.SendEmail(ctx, m.SMTP, m.Recipients, utils.OrderMailSubject(data), html, attachments...); err != nil {
		return err
	}
	log.Printf("📧 Notification envoyée pour %s", n.Group.ID)
	return nil
}
