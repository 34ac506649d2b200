package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tornearia/internal/models"
)

func newQuoteService(t *testing.T) (*QuoteService, *SaleService, models.Item) {
	t.Helper()
	conn := newTestDB(t)
	sales := NewSaleService(conn)
	quotes := NewQuoteService(conn, sales)
	item := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)
	return quotes, sales, item
}

func mustCreateQuote(t *testing.T, svc *QuoteService, in QuoteInput) *models.Quote {
	t.Helper()
	quote, err := svc.Create(in)
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	return quote
}

func TestQuoteNumberingSequence(t *testing.T) {
	quotes, _, item := newQuoteService(t)
	for i := 1; i <= 3; i++ {
		q := mustCreateQuote(t, quotes, QuoteInput{Items: []LineInput{{ItemID: item.ID, Quantity: 1}}})
		want := fmt.Sprintf("ORC%05d", i)
		if q.Number != want {
			t.Fatalf("quote %d: number = %q, want %q", i, q.Number, want)
		}
	}
}

func TestQuoteDefaultsAndStatus(t *testing.T) {
	quotes, _, item := newQuoteService(t)
	quotes.now = fixedNow(2024, 6, 1)

	q := mustCreateQuote(t, quotes, QuoteInput{Items: []LineInput{{ItemID: item.ID, Quantity: 2}}})
	if q.Status != models.QuotePending {
		t.Errorf("status = %s, want pending", q.Status)
	}
	if !q.IssueDate.Equal(date(2024, 6, 1)) {
		t.Errorf("issue date = %s, want today", q.IssueDate)
	}
	if !q.ValidUntil.Equal(date(2024, 7, 1)) {
		t.Errorf("valid until = %s, want +30 days", q.ValidUntil)
	}
}

func TestQuoteApproveRejectTransitions(t *testing.T) {
	quotes, _, item := newQuoteService(t)
	in := QuoteInput{Items: []LineInput{{ItemID: item.ID, Quantity: 1}}}

	q := mustCreateQuote(t, quotes, in)
	approved, err := quotes.Approve(q.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.QuoteApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}
	if _, err := quotes.Approve(q.ID); err != ErrQuoteNotPending {
		t.Errorf("re-approve: err = %v, want ErrQuoteNotPending", err)
	}
	if _, err := quotes.Reject(q.ID); err != ErrQuoteNotPending {
		t.Errorf("reject approved: err = %v, want ErrQuoteNotPending", err)
	}

	q2 := mustCreateQuote(t, quotes, in)
	rejected, err := quotes.Reject(q2.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.QuoteRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
}

func TestQuoteConvertCopiesEverything(t *testing.T) {
	quotes, sales, item := newQuoteService(t)
	quotes.now = fixedNow(2024, 6, 15)
	client := seedClient(t, quotes.db, "João", "joao@example.com")

	q := mustCreateQuote(t, quotes, QuoteInput{
		ClientID: &client.ID,
		Discount: decimal.RequireFromString("5"),
		Notes:    "peça sob medida",
		Items: []LineInput{
			{ItemID: item.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("80.00")},
		},
	})
	if _, err := quotes.Approve(q.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	sale, err := quotes.Convert(q.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if sale.Status != models.SaleInProgress {
		t.Errorf("sale status = %s, want in_progress", sale.Status)
	}
	if sale.QuoteID == nil || *sale.QuoteID != q.ID {
		t.Errorf("sale quote link = %v, want %d", sale.QuoteID, q.ID)
	}
	if sale.ClientID == nil || *sale.ClientID != client.ID {
		t.Errorf("client not copied")
	}
	if !sale.Discount.Equal(q.Discount) {
		t.Errorf("discount = %s, want %s", sale.Discount, q.Discount)
	}
	if len(sale.Items) != 1 || !sale.Items[0].UnitPrice.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("lines not copied verbatim: %+v", sale.Items)
	}
	if !sale.EntryDate.Equal(date(2024, 6, 15)) {
		t.Errorf("entry date = %s, want conversion day", sale.EntryDate)
	}
	if !strings.Contains(sale.Notes, q.Number) {
		t.Errorf("notes %q should reference %s", sale.Notes, q.Number)
	}
	if len(sale.Installments) != 1 {
		t.Errorf("installments = %d, want 1", len(sale.Installments))
	}

	converted, err := quotes.Get(q.ID)
	if err != nil {
		t.Fatalf("reload quote: %v", err)
	}
	if converted.Status != models.QuoteConverted {
		t.Errorf("quote status = %s, want converted", converted.Status)
	}

	if _, err := quotes.Convert(q.ID); err != ErrQuoteNotApproved {
		t.Errorf("re-convert: err = %v, want ErrQuoteNotApproved", err)
	}
	if _, err := sales.Get(sale.ID); err != nil {
		t.Errorf("converted sale not persisted: %v", err)
	}
}

func TestQuoteConvertRequiresApproval(t *testing.T) {
	quotes, _, item := newQuoteService(t)
	q := mustCreateQuote(t, quotes, QuoteInput{Items: []LineInput{{ItemID: item.ID, Quantity: 1}}})
	if _, err := quotes.Convert(q.ID); err != ErrQuoteNotApproved {
		t.Errorf("convert pending: err = %v, want ErrQuoteNotApproved", err)
	}
}

func TestQuoteConvertedIsTerminal(t *testing.T) {
	quotes, _, item := newQuoteService(t)
	in := QuoteInput{Items: []LineInput{{ItemID: item.ID, Quantity: 1}}}
	q := mustCreateQuote(t, quotes, in)
	if _, err := quotes.Approve(q.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := quotes.Convert(q.ID); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := quotes.Update(q.ID, in); err != ErrQuoteNotPending {
		t.Errorf("update converted: err = %v, want ErrQuoteNotPending", err)
	}
}
