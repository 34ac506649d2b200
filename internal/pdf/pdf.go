// Package pdf renders quote documents and sale receipts with go-pdf/fpdf.
// Rendering is deterministic: the emission timestamp is an input and the PDF
// creation date is pinned to it, so identical inputs produce identical bytes.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"tornearia/internal/models"
)

// Theme colors, kept from the original documents.
var (
	colPrimary   = rgb{0x1e, 0x3a, 0x5f}
	colSecondary = rgb{0x2c, 0x52, 0x82}
	colText      = rgb{0x2d, 0x37, 0x48}
	colMuted     = rgb{0x71, 0x80, 0x96}
	colStripe    = rgb{0xf7, 0xfa, 0xfc}
)

type rgb struct{ r, g, b int }

type line struct {
	Kind        models.ItemKind
	Description string
	Extra       string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type document struct {
	Title     string
	Number    string
	IssuedAt  time.Time
	InfoRows  [][2]string
	Lines     []line
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal // percentage
	DiscValue decimal.Decimal
	Total     decimal.Decimal
	Notes     string
}

// Quote renders the quote document.
func Quote(profile models.CompanyProfile, q *models.Quote, issuedAt time.Time) ([]byte, error) {
	doc := document{
		Title:    "ORÇAMENTO",
		Number:   q.Number,
		IssuedAt: issuedAt,
		InfoRows: [][2]string{
			{"Data de Emissão", q.IssueDate.Format("02/01/2006")},
			{"Validade", q.ValidUntil.Format("02/01/2006")},
			{"Cliente", orDash(q.RecipientName())},
			{"Status", quoteStatusLabel(q.Status)},
		},
		Subtotal:  q.Subtotal(),
		Discount:  q.Discount,
		DiscValue: q.DiscountValue(),
		Total:     q.Total(),
		Notes:     q.Notes,
	}
	if q.PaymentTerms != "" {
		doc.InfoRows = append(doc.InfoRows, [2]string{"Condições de Pagamento", q.PaymentTerms})
	}
	for i := range q.Items {
		qi := &q.Items[i]
		doc.Lines = append(doc.Lines, line{
			Kind:        qi.Item.Kind,
			Description: qi.Item.Name,
			Extra:       qi.ExtraDescription,
			Quantity:    qi.Quantity,
			UnitPrice:   qi.UnitPrice,
			Total:       qi.Total(),
		})
	}
	return render(profile, doc)
}

// SaleReceipt renders the sale document. The title follows the sale status:
// service order while in progress, receipt once completed.
func SaleReceipt(profile models.CompanyProfile, s *models.Sale, issuedAt time.Time) ([]byte, error) {
	var title string
	switch s.Status {
	case models.SaleCompleted:
		title = "COMPROVANTE DE SERVIÇO"
	case models.SaleInProgress:
		title = "ORDEM DE SERVIÇO"
	default:
		title = "REGISTRO DE SERVIÇO"
	}
	doc := document{
		Title:    title,
		Number:   s.Number,
		IssuedAt: issuedAt,
		InfoRows: [][2]string{
			{"Data de Entrada", s.EntryDate.Format("02/01/2006")},
			{"Cliente", orDash(s.RecipientName())},
			{"Status", saleStatusLabel(s.Status)},
			{"Forma de Pagamento", orDash(methodLabel(s.PaymentMethod))},
		},
		Subtotal:  s.Subtotal(),
		Discount:  s.Discount,
		DiscValue: s.DiscountValue(),
		Total:     s.Total(),
		Notes:     s.Notes,
	}
	if s.CompletionDate != nil {
		doc.InfoRows = append(doc.InfoRows, [2]string{"Data de Conclusão", s.CompletionDate.Format("02/01/2006")})
	}
	for i := range s.Items {
		si := &s.Items[i]
		doc.Lines = append(doc.Lines, line{
			Kind:        si.Item.Kind,
			Description: si.Item.Name,
			Extra:       si.ExtraDescription,
			Quantity:    si.Quantity,
			UnitPrice:   si.UnitPrice,
			Total:       si.Total(),
		})
	}
	return render(profile, doc)
}

func render(profile models.CompanyProfile, doc document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(doc.IssuedAt)
	pdf.SetMargins(15, 10, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// Company header
	setTextColor(pdf, colPrimary)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW, 9, tr(strings.ToUpper(profile.Name)), "", 1, "L", false, 0, "")
	setTextColor(pdf, colMuted)
	pdf.SetFont("Helvetica", "", 9)
	for _, info := range []struct{ label, value string }{
		{"CNPJ", profile.CNPJ},
		{"Endereço", profile.Address},
		{"Telefone", profile.Phone},
		{"E-mail", profile.Email},
	} {
		if info.value == "" {
			continue
		}
		pdf.CellFormat(contentW, 4.5, tr(info.label+": "+info.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Document type band
	setFillColor(pdf, colPrimary)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 9, tr(doc.Title), "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	sub := fmt.Sprintf("Nº %s • Emitido em %s", doc.Number, doc.IssuedAt.Format("02/01/2006 às 15:04"))
	pdf.CellFormat(contentW, 6, tr(sub), "", 1, "C", true, 0, "")
	pdf.Ln(6)

	// Info rows
	setTextColor(pdf, colText)
	labelW := contentW * 0.3
	for _, row := range doc.InfoRows {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(labelW, 6, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-labelW, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Line item table
	setTextColor(pdf, colPrimary)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr("SERVIÇOS E PRODUTOS"), "", 1, "L", false, 0, "")

	colNum := contentW * 0.06
	colDesc := contentW * 0.50
	colQty := contentW * 0.10
	colUnit := contentW * 0.17
	colTotal := contentW * 0.17

	setFillColor(pdf, colSecondary)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colNum, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colDesc, 8, tr("DESCRIÇÃO"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 8, "QTD", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colUnit, 8, "VALOR UNIT.", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 8, "TOTAL", "1", 1, "R", true, 0, "")

	setTextColor(pdf, colText)
	pdf.SetFont("Helvetica", "", 9)
	for i, ln := range doc.Lines {
		fill := i%2 == 1
		setFillColor(pdf, colStripe)
		desc := kindBadge(ln.Kind) + " " + ln.Description
		if ln.Extra != "" {
			desc += " - " + ln.Extra
		}
		pdf.CellFormat(colNum, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colDesc, 7, tr(desc), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colQty, 7, fmt.Sprintf("%d", ln.Quantity), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colUnit, 7, tr(formatBRL(ln.UnitPrice)), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colTotal, 7, tr(formatBRL(ln.Total)), "1", 1, "R", fill, 0, "")
	}
	pdf.Ln(4)

	// Totals block
	sumLabelW := contentW * 0.66
	sumValueW := contentW * 0.34
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(sumLabelW, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(sumValueW, 6, tr(formatBRL(doc.Subtotal)), "", 1, "R", false, 0, "")
	if doc.Discount.IsPositive() {
		pdf.SetTextColor(0xe5, 0x3e, 0x3e)
		pdf.CellFormat(sumLabelW, 6, tr(fmt.Sprintf("Desconto (%s%%):", doc.Discount.String())), "", 0, "R", false, 0, "")
		pdf.CellFormat(sumValueW, 6, tr("- "+formatBRL(doc.DiscValue)), "", 1, "R", false, 0, "")
		setTextColor(pdf, colText)
	}
	pdf.Ln(2)
	setDrawColor(pdf, colPrimary)
	pdf.SetLineWidth(0.5)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(sumLabelW, 10, "VALOR TOTAL", "TB", 0, "R", false, 0, "")
	setTextColor(pdf, colPrimary)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(sumValueW, 10, tr(formatBRL(doc.Total)), "TB", 1, "R", false, 0, "")

	// Notes
	if doc.Notes != "" {
		pdf.Ln(6)
		setTextColor(pdf, colPrimary)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, tr("OBSERVAÇÕES"), "", 1, "L", false, 0, "")
		setTextColor(pdf, colText)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr(doc.Notes), "1", "L", false)
	}

	// Footer
	pdf.Ln(10)
	setTextColor(pdf, colPrimary)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr("Obrigado pela preferência!"), "", 1, "C", false, 0, "")
	setTextColor(pdf, colMuted)
	pdf.SetFont("Helvetica", "", 8)
	footer := profile.Name
	var parts []string
	if profile.Address != "" {
		parts = append(parts, profile.Address)
	}
	if profile.Phone != "" {
		parts = append(parts, "Tel: "+profile.Phone)
	}
	if profile.Email != "" {
		parts = append(parts, profile.Email)
	}
	if len(parts) > 0 {
		footer += " • " + strings.Join(parts, " • ")
	}
	pdf.CellFormat(contentW, 5, tr(footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}

// formatBRL renders a decimal as Brazilian currency: R$ 1.234,56.
func formatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)
	out := "R$ " + strings.Join(grouped, ".") + "," + fracPart
	if neg {
		out = "- " + out
	}
	return out
}

func kindBadge(k models.ItemKind) string {
	switch k {
	case models.ItemService:
		return "[SERVIÇO]"
	case models.ItemProduct:
		return "[PRODUTO]"
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func quoteStatusLabel(s models.QuoteStatus) string {
	switch s {
	case models.QuotePending:
		return "Pendente"
	case models.QuoteApproved:
		return "Aprovado"
	case models.QuoteRejected:
		return "Rejeitado"
	case models.QuoteConverted:
		return "Convertido em Venda"
	}
	return string(s)
}

func saleStatusLabel(s models.SaleStatus) string {
	switch s {
	case models.SaleInProgress:
		return "Em Andamento"
	case models.SaleCompleted:
		return "Concluído"
	case models.SaleCancelled:
		return "Cancelado"
	}
	return string(s)
}

func methodLabel(m models.PaymentMethod) string {
	switch m {
	case models.MethodCash:
		return "Dinheiro"
	case models.MethodPix:
		return "PIX"
	case models.MethodDebitCard:
		return "Cartão de Débito"
	case models.MethodCreditCard:
		return "Cartão de Crédito"
	case models.MethodBoleto:
		return "Boleto"
	case models.MethodTransfer:
		return "Transferência"
	case models.MethodCheque:
		return "Cheque"
	}
	return ""
}

func setTextColor(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFillColor(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setDrawColor(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
