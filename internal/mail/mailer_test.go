package mail

import (
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
)

func TestSendBuildsMessage(t *testing.T) {
	m := New(Config{Host: "smtp.example.com", Port: "587", User: "user", Password: "pw", From: "shop@example.com"})
	var gotAddr string
	var gotMail *email.Email
	var gotAuth smtp.Auth
	m.send = func(addr string, auth smtp.Auth, e *email.Email) error {
		gotAddr, gotAuth, gotMail = addr, auth, e
		return nil
	}

	err := m.Send(Message{
		To:             "client@example.com",
		Subject:        "Documento VND00001",
		Body:           "Segue em anexo.",
		AttachmentName: "venda_VND00001.pdf",
		Attachment:     []byte("%PDF-1.4 fake"),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotAuth == nil {
		t.Errorf("expected plain auth when user is set")
	}
	if gotMail.From != "shop@example.com" || gotMail.To[0] != "client@example.com" {
		t.Errorf("envelope = %q -> %v", gotMail.From, gotMail.To)
	}
	if len(gotMail.Attachments) != 1 || gotMail.Attachments[0].Filename != "venda_VND00001.pdf" {
		t.Errorf("attachments = %+v", gotMail.Attachments)
	}
}

func TestSendWithoutAttachment(t *testing.T) {
	m := New(Config{Host: "smtp.example.com", Port: "25", From: "shop@example.com"})
	var gotMail *email.Email
	var gotAuth smtp.Auth
	m.send = func(addr string, auth smtp.Auth, e *email.Email) error {
		gotAuth, gotMail = auth, e
		return nil
	}
	if err := m.Send(Message{To: "a@b.c", Subject: "oi", Body: "tudo bem"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(gotMail.Attachments) != 0 {
		t.Errorf("unexpected attachments")
	}
	if gotAuth != nil {
		t.Errorf("auth should be nil without a user")
	}
}

func TestSendRefusedWhenUnconfigured(t *testing.T) {
	m := New(Config{})
	if err := m.Send(Message{To: "a@b.c"}); err == nil {
		t.Errorf("expected error when smtp is not configured")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Errorf("empty config reported enabled")
	}
	if !(Config{Host: "h", From: "f"}).Enabled() {
		t.Errorf("host+from should be enough")
	}
	if (Config{Host: "h"}).Enabled() {
		t.Errorf("missing from should disable")
	}
}
