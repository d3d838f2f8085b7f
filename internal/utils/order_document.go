package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// DocumentLine est une ligne du bon de commande
type DocumentLine struct {
	ProductName string
	Quantity    int
	Unit        string
	IsUrgent    bool
}

// OrderDocument contient tout ce qu'affiche le bon de commande d'un groupe
type OrderDocument struct {
	OrderID       string
	Date          string
	Supplier      string
	RequesterName string
	Factory       string
	CompanyName   string
	CompanySites  []string
	Lines         []DocumentLine
	QRDataURI     template.URL
}

// RenderedDocument est le document produit, prêt à archiver ou joindre à un e-mail
type RenderedDocument struct {
	Data        []byte
	ContentType string
	FileName    string
}

// GenerateQRCode encode le contenu en PNG
func GenerateQRCode(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}

// QRDataURI renvoie le PNG sous forme data URI pour <img src="...">
func QRDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

var orderTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<title>注文書 {{.OrderID}}</title>
<style>
	body { font-family: "Noto Sans JP", sans-serif; padding: 30px; font-size: 11px; }
	h1 { text-align: center; font-size: 22px; letter-spacing: 8px; }
	.info { display: flex; justify-content: space-between; margin-bottom: 20px; }
	.vendor { font-size: 16px; font-weight: bold; border-bottom: 1px solid #000; margin-top: 8px; }
	.right { text-align: right; }
	.sites { font-size: 8px; }
	table { width: 100%; border-collapse: collapse; }
	th, td { border: 1px solid #000; padding: 6px; }
	th { background: #eee; }
	td.c { text-align: center; }
	.note { margin-top: 20px; font-size: 9px; }
</style>
</head>
<body>
<h1>注文書</h1>
<div class="info">
	<div>
		<div>発注日: {{.Date}}</div>
		<div>注文ID: {{.OrderID}}</div>
		<div class="vendor">{{.Supplier}} 御中</div>
	</div>
	<div class="right">
		<div>{{.CompanyName}}</div>
		{{range .CompanySites}}<div class="sites">{{.}}</div>{{end}}
		{{if .QRDataURI}}<img src="{{.QRDataURI}}" width="80" height="80" alt="QR">{{end}}
	</div>
</div>
<table>
	<thead>
		<tr><th>品名・詳細</th><th>発注者</th><th>納入工場</th><th>数量</th><th>至急</th></tr>
	</thead>
	<tbody>
	{{range .Lines}}
		<tr>
			<td>{{.ProductName}}</td>
			<td class="c">{{$.RequesterName}}</td>
			<td class="c">{{$.Factory}}</td>
			<td class="c">{{.Quantity}} {{.Unit}}</td>
			<td class="c">{{if .IsUrgent}}★{{end}}</td>
		</tr>
	{{end}}
	</tbody>
</table>
<p class="note">※納品時に右上のQRコード、または注文IDを確認させていただきます。</p>
</body>
</html>`))

// RenderOrderHTML produit le HTML du bon de commande
func RenderOrderHTML(doc OrderDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("rendu HTML %s: %w", doc.OrderID, err)
	}
	return buf.Bytes(), nil
}

// HTMLRenderer rend le bon de commande en HTML seul (PDF désactivé)
type HTMLRenderer struct{}

func (HTMLRenderer) Render(ctx context.Context, doc OrderDocument) (*RenderedDocument, error) {
	html, err := RenderOrderHTML(doc)
	if err != nil {
		return nil, err
	}
	return &RenderedDocument{
		Data:        html,
		ContentType: "text/html; charset=utf-8",
		FileName:    doc.OrderID + ".html",
	}, nil
}

// ChromePDFRenderer imprime le HTML du bon de commande en PDF via Chrome headless
type ChromePDFRenderer struct {
	Timeout time.Duration
}

func (r ChromePDFRenderer) Render(ctx context.Context, doc OrderDocument) (*RenderedDocument, error) {
	html, err := RenderOrderHTML(doc)
	if err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("rendu PDF %s: %w", doc.OrderID, err)
	}

	return &RenderedDocument{
		Data:        pdf,
		ContentType: "application/pdf",
		FileName:    doc.OrderID + ".pdf",
	}, nil
}
