package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestRenderKardex_GeneraPDF(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	k := &dto.KardexResponse{
		SKU:           "CAM-M-AZ",
		VariantName:   "Camisa M azul",
		WarehouseName: "Principal",
		GeneratedAt:   now,
		FinalBalance:  45,
		Entries: []dto.KardexEntry{
			{MovementResponse: dto.MovementResponse{Kind: "PURCHASE", Quantity: 50, OccurredAt: now}, Balance: 50, AverageCost: decimal.NewFromInt(12000)},
			{MovementResponse: dto.MovementResponse{Kind: "SALE", Quantity: -5, OccurredAt: now}, Balance: 45, AverageCost: decimal.NewFromInt(12000)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, pdf.NewKardexGenerator(language.Spanish).RenderKardex(&buf, k))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderKardex_SinMovimientos(t *testing.T) {
	var buf bytes.Buffer
	err := pdf.NewKardexGenerator(language.Und).RenderKardex(&buf, &dto.KardexResponse{SKU: "X", GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
