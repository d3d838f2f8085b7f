package utils

import (
	"bytes"
	"fmt"
	"html/template"
)

// OrderMailData alimente le gabarit de notification d'une commande
type OrderMailData struct {
	OrderID       string
	Date          string
	Supplier      string
	RequesterName string
	Factory       string
	Subtotal      float64
	ItemCount     int
	Lines         []DocumentLine
	DetailURL     string
}

// OrderMailSubject est l'objet de l'e-mail envoyé pour chaque groupe
func OrderMailSubject(d OrderMailData) string {
	return fmt.Sprintf("【発注】%s 様 / %s", d.Supplier, d.OrderID)
}

var orderMailTemplate = template.Must(template.New("order_mail").Funcs(template.FuncMap{
	"yen": func(v float64) string { return fmt.Sprintf("¥%.0f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <title>発注通知 {{.OrderID}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Noto Sans JP', Arial, sans-serif; background-color: #f5f5f5;">
    <table role="presentation" style="width: 100%; border-collapse: collapse; background-color: #f5f5f5;">
        <tr>
            <td style="padding: 30px 20px;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px;">
                    <tr>
                        <td style="background-color: #1e40af; padding: 30px; text-align: center; border-radius: 12px 12px 0 0;">
                            <h1 style="margin: 0; color: #ffffff; font-size: 22px;">📦 新しい発注があります</h1>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px;">
                            <table role="presentation" style="width: 100%; border-collapse: collapse; background-color: #f8f9fa; border-radius: 8px;">
                                <tr><td style="padding: 8px 15px; color: #666;">注文ID</td><td style="padding: 8px 15px; text-align: right;"><strong>{{.OrderID}}</strong></td></tr>
                                <tr><td style="padding: 8px 15px; color: #666;">発注日</td><td style="padding: 8px 15px; text-align: right;">{{.Date}}</td></tr>
                                <tr><td style="padding: 8px 15px; color: #666;">発注先</td><td style="padding: 8px 15px; text-align: right;">{{.Supplier}}</td></tr>
                                <tr><td style="padding: 8px 15px; color: #666;">発注者</td><td style="padding: 8px 15px; text-align: right;">{{.RequesterName}}{{if .Factory}} ({{.Factory}}){{end}}</td></tr>
                                <tr><td style="padding: 8px 15px; color: #666;">合計</td><td style="padding: 8px 15px; text-align: right; font-weight: 700;">{{yen .Subtotal}} / {{.ItemCount}} 点</td></tr>
                            </table>

                            <table role="presentation" style="width: 100%; border-collapse: collapse; margin-top: 20px;">
                                <tr style="background-color: #f0f0f0;">
                                    <th style="padding: 8px; text-align: left; border: 1px solid #ddd;">品名</th>
                                    <th style="padding: 8px; border: 1px solid #ddd;">数量</th>
                                    <th style="padding: 8px; border: 1px solid #ddd;">至急</th>
                                </tr>
                                {{range .Lines}}
                                <tr>
                                    <td style="padding: 8px; border: 1px solid #ddd;">{{.ProductName}}</td>
                                    <td style="padding: 8px; border: 1px solid #ddd; text-align: center;">{{.Quantity}} {{.Unit}}</td>
                                    <td style="padding: 8px; border: 1px solid #ddd; text-align: center; color: #dc2626;">{{if .IsUrgent}}★{{end}}</td>
                                </tr>
                                {{end}}
                            </table>

                            {{if .DetailURL}}
                            <p style="margin: 30px 0 0 0; text-align: center;">
                                <a href="{{.DetailURL}}" style="display: inline-block; padding: 12px 28px; background-color: #1e40af; color: #ffffff; text-decoration: none; border-radius: 6px;">注文書を開く</a>
                            </p>
                            {{end}}
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 20px; background-color: #f8f9fa; border-radius: 0 0 12px 12px; text-align: center; color: #999; font-size: 12px;">
                            注文書（PDF）を添付しています。納品時にQRコードまたは注文IDをご確認ください。
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`))

// RenderOrderMail produit le corps HTML de la notification
func RenderOrderMail(d OrderMailData) (string, error) {
	var buf bytes.Buffer
	if err := orderMailTemplate.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
