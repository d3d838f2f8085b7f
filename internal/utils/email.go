package utils

import (
	"bytes"
	"context"
	"errors"
	"log"

	"github.com/wneessen/go-mail"
)

// SMTPConfig regroupe les paramètres d'envoi
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Attachment est une pièce jointe en mémoire
type Attachment struct {
	Name string
	Data []byte
}

// SendEmail envoie un e-mail HTML avec ses pièces jointes
func SendEmail(ctx context.Context, cfg SMTPConfig, to []string, subject, htmlBody string, attachments ...Attachment) error {
	if cfg.Host == "" {
		return errors.New("SMTP_HOST non configuré")
	}
	if len(to) == 0 {
		return errors.New("aucun destinataire")
	}

	msg := mail.NewMsg()
	if err := msg.From(cfg.From); err != nil {
		return err
	}
	if err := msg.To(to...); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	for _, a := range attachments {
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data)); err != nil {
			return err
		}
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSendWithContext(ctx, msg)
}
