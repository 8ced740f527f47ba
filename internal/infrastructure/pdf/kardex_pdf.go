// Package pdf genera el Kardex de una variante en una bodega en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: SKU + Variante       │  Bodega + Fecha de corte     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Ref | Entrada | Salida | Saldo | C.P. │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SALDO FINAL (incluye movimientos ocultos)                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"io"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

var _ inventory.KardexRenderer = (*KardexGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorOut     = &props.Color{Red: 160, Green: 30, Blue: 30}
)

var kindLabels = map[string]string{
	"PURCHASE":   "Compra",
	"SALE":       "Venta",
	"ADJUSTMENT": "Ajuste",
	"TRANSFER":   "Traslado",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// KardexGenerator implementa inventory.KardexRenderer con Maroto v2. Los números se formatean
// según el idioma configurado (separador de miles y decimales).
type KardexGenerator struct {
	printer *message.Printer
}

// NewKardexGenerator construye el generador. Con tag vacío usa español.
func NewKardexGenerator(tag language.Tag) *KardexGenerator {
	if tag == language.Und {
		tag = language.Spanish
	}
	return &KardexGenerator{printer: message.NewPrinter(tag)}
}

// RenderKardex genera el PDF y lo escribe en w.
func (g *KardexGenerator) RenderKardex(w io.Writer, k *dto.KardexResponse) error {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+k.SKU, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(k))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, e := range k.Entries {
		m.AddRows(g.entryRow(e))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.footerRow(k))

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("pdf: generar kardex: %w", err)
	}
	if _, err := w.Write(doc.GetBytes()); err != nil {
		return fmt.Errorf("pdf: escribir kardex: %w", err)
	}
	return nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *KardexGenerator) headerRow(k *dto.KardexResponse) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%s  %s", k.SKU, k.VariantName), props.Text{Size: 9, Top: 8}),
		),
		col.New(5).Add(
			text.New("Bodega: "+nonEmpty(k.WarehouseName, k.WarehouseID), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Corte: "+k.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(7).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Nota", 3, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Saldo", 1, align.Right),
		h("Costo prom.", 2, align.Right),
	)
}

func (g *KardexGenerator) entryRow(e dto.KardexEntry) core.Row {
	in, out := "", ""
	if e.Quantity > 0 {
		in = g.qty(e.Quantity)
	} else {
		out = g.qty(-e.Quantity)
	}
	cell := func(s string, size int, a align.Type, c *props.Color) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7, Align: a, Top: 1, Color: c}))
	}
	return row.New(6).Add(
		cell(e.OccurredAt.Format("02/01/2006 15:04"), 2, align.Left, nil),
		cell(nonEmpty(kindLabels[e.Kind], e.Kind), 2, align.Left, nil),
		cell(e.Note, 3, align.Left, colorGray),
		cell(in, 1, align.Right, nil),
		cell(out, 1, align.Right, colorOut),
		cell(g.qty(e.Balance), 1, align.Right, nil),
		cell(g.money(e.AverageCost), 2, align.Right, nil),
	)
}

func (g *KardexGenerator) footerRow(k *dto.KardexResponse) core.Row {
	return row.New(10).Add(
		col.New(9).Add(text.New("SALDO FINAL", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2})),
		col.New(3).Add(text.New(g.qty(k.FinalBalance), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (g *KardexGenerator) qty(n int64) string {
	return g.printer.Sprintf("%d", n)
}

func (g *KardexGenerator) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("%.2f", f)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
