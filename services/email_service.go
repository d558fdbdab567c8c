package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"craftmarket/models"

	"golang.org/x/net/html"
)

// Notifier is the outbound notification collaborator. Delivery internals are
// external; engines call it best-effort and never fail an operation on it.
type Notifier interface {
	NotifyOfferCreated(to string, offer *models.Offer) error
	NotifyOrderCanceled(to string, order *models.Order) error
}

// EmailNotifier sends notification mails over SMTP. When SMTP is not
// configured it degrades to logging only.
type EmailNotifier struct {
	host string
	port string
	from string
	pass string
}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		from: os.Getenv("SMTP_FROM"),
		pass: os.Getenv("SMTP_PASSWORD"),
	}
}

// convertHTMLToText flattens an HTML body to plain text for the text part of
// the mail. Parsing failures fall back to the raw content.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	result := strings.ReplaceAll(text.String(), "\n\n\n", "\n\n")
	return strings.TrimSpace(result)
}

func (n *EmailNotifier) send(to, subject, htmlBody string) error {
	if n.host == "" || n.from == "" {
		log.Printf("email notifier: SMTP not configured, skipping mail to %s (%s)", to, subject)
		return nil
	}
	plain := convertHTMLToText(htmlBody)
	msg := []byte("From: " + n.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + plain + "\r\n")

	auth := smtp.PlainAuth("", n.from, n.pass, n.host)
	if err := smtp.SendMail(n.host+":"+n.port, auth, n.from, []string{to}, msg); err != nil {
		log.Printf("email notifier: failed to send mail to %s: %v", to, err)
		return err
	}
	return nil
}

func (n *EmailNotifier) NotifyOfferCreated(to string, offer *models.Offer) error {
	body := fmt.Sprintf(
		"<div><p>Für Ihre Anfrage liegt ein neues Angebot vor:</p><h3>%s</h3><p>Gesamtbetrag: %.2f €</p></div>",
		offer.Title, offer.GrossTotal)
	return n.send(to, "Neues Angebot erhalten", body)
}

func (n *EmailNotifier) NotifyOrderCanceled(to string, order *models.Order) error {
	body := fmt.Sprintf(
		"<div><p>Der folgende Auftrag wurde storniert:</p><h3>%s</h3><p>Gesamtbetrag: %.2f €</p></div>",
		order.Title, order.GrossTotal)
	return n.send(to, "Auftrag storniert", body)
}
