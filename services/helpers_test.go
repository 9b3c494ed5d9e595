package services

import (
	"io"
	"log/slog"
	"testing"

	"go-shop/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCreate(t *testing.T, c *ProductCatalog, p models.Product) models.Product {
	t.Helper()
	out, err := c.Create(p)
	require.NoError(t, err)
	return out
}

func prices(ps []models.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Price.String()
	}
	return out
}

func names(ps []models.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
