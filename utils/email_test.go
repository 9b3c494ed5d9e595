package utils

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go-shop/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct{ to, subject, body string }

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestNewMailer(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.IsType(t, &PostmarkMailer{}, NewMailer("postmark", "tok", "shop@x", log))
	assert.IsType(t, &SendGridMailer{}, NewMailer("sendgrid", "key", "shop@x", log))
	assert.IsType(t, LogMailer{}, NewMailer("none", "", "", log))
}

func TestOrderTemplates(t *testing.T) {
	order := models.Order{
		ID:          "o1",
		Items:       []models.OrderItem{{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(10)}},
		TotalAmount: decimal.RequireFromString("20"),
		Status:      models.OrderShipped,
	}

	subject, body := OrderConfirmation("alice", order)
	assert.Equal(t, "Order Confirmation", subject)
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "o1")
	assert.Contains(t, body, "$20.00")

	subject, body = StatusChanged("alice", order)
	assert.Equal(t, "Order Status Updated", subject)
	assert.Contains(t, body, "'SHIPPED'")
}

func TestOrderTemplates_EscapeUserInput(t *testing.T) {
	order := models.Order{ID: "o1", Status: `<img src=x onerror="x">`}

	_, body := OrderConfirmation("<script>alert(1)</script>", order)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")

	_, body = StatusChanged("bob", order)
	assert.NotContains(t, body, "<img")
	assert.Contains(t, body, "&lt;img")
}

func TestOrderNotifier_Send(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	n := &OrderNotifier{Mailer: mailer, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	n.Send(models.User{Username: "nomail"}, "s", "b")
	n.Send(models.User{Username: "alice", Email: "alice@x"}, "subject", "body")

	require.Eventually(t, func() bool { return mailer.count() == 1 }, time.Second, 5*time.Millisecond)
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, sentMail{"alice@x", "subject", "body"}, mailer.sent[0])
}
