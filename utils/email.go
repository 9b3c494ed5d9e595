package utils

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"go-shop/models"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a single email.
type Mailer interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

// PostmarkMailer sends email using Postmark
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer creates a Postmark-backed mailer.
func NewPostmarkMailer(apiToken, from string) *PostmarkMailer {
	return &PostmarkMailer{client: postmark.NewClient(apiToken, ""), from: from}
}

// SendEmail sends a basic email to the specified recipient
func (m *PostmarkMailer) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer sends email using SendGrid
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer creates a SendGrid-backed mailer.
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: mail.NewEmail("", from)}
}

// SendEmail sends a basic email to the specified recipient
func (m *SendGridMailer) SendEmail(toEmail, subject, htmlContent string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", toEmail), htmlContent, htmlContent)
	resp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to send email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs what would have been sent.
type LogMailer struct {
	Log *slog.Logger
}

// SendEmail logs the message.
func (m LogMailer) SendEmail(toEmail, subject, _ string) error {
	m.Log.Info("email skipped (no provider configured)", "to", toEmail, "subject", subject)
	return nil
}

// NewMailer picks a mailer for provider ("postmark", "sendgrid", anything
// else logs only).
func NewMailer(provider, token, from string, log *slog.Logger) Mailer {
	switch provider {
	case "postmark":
		return NewPostmarkMailer(token, from)
	case "sendgrid":
		return NewSendGridMailer(token, from)
	default:
		return LogMailer{Log: log}
	}
}

// OrderNotifier sends order emails to the order's owner.
type OrderNotifier struct {
	Mailer Mailer
	Log    *slog.Logger
}

// OrderConfirmation renders the confirmation subject and body for order.
func OrderConfirmation(username string, order models.Order) (string, string) {
	subject := "Order Confirmation"
	body := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Items: <strong>%d</strong><br>Total Amount: <strong>$%s</strong><br><br>Thank you for shopping with us!",
		html.EscapeString(username), html.EscapeString(order.ID), len(order.Items), order.TotalAmount.StringFixed(2),
	)
	return subject, body
}

// StatusChanged renders the status-update subject and body for order.
func StatusChanged(username string, order models.Order) (string, string) {
	subject := "Order Status Updated"
	body := fmt.Sprintf(
		"Dear %s,<br><br>Your order (ID: %s) status has been updated to '%s'.<br><br>Thank you for shopping with us!",
		html.EscapeString(username), html.EscapeString(order.ID), html.EscapeString(string(order.Status)),
	)
	return subject, body
}

// Send delivers one message in the background; failures are logged.
func (n *OrderNotifier) Send(user models.User, subject, body string) {
	if user.Email == "" {
		return
	}
	go func() {
		if err := n.Mailer.SendEmail(user.Email, subject, body); err != nil {
			n.Log.Error("failed to send email", "to", user.Email, "subject", subject, "err", err)
		}
	}()
}
