package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow una variante del catálogo inicial con su existencia de apertura.
type catalogRow struct {
	SKU      string
	Name     string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	Quantity int64
}

// readCatalog lee un CSV separado por ';' con columnas sku;nombre;precio;costo;cantidad.
// La primera fila es encabezado. latin1 decodifica archivos exportados desde Excel en ISO-8859-1.
func readCatalog(r io.Reader, latin1 bool) ([]catalogRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 5

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	seen := make(map[string]int, len(records))
	rows := make([]catalogRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		sku := strings.TrimSpace(rec[0])
		if sku == "" {
			return nil, fmt.Errorf("línea %d: sku vacío", line)
		}
		if prev, ok := seen[sku]; ok {
			return nil, fmt.Errorf("línea %d: sku %s repetido (línea %d)", line, sku, prev)
		}
		seen[sku] = line

		price, err := parseMoney(rec[2])
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio: %w", line, err)
		}
		cost, err := parseMoney(rec[3])
		if err != nil {
			return nil, fmt.Errorf("línea %d: costo: %w", line, err)
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(rec[4]), 10, 64)
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("línea %d: cantidad inválida %q", line, rec[4])
		}
		rows = append(rows, catalogRow{
			SKU:      sku,
			Name:     strings.TrimSpace(rec[1]),
			Price:    price,
			Cost:     cost,
			Quantity: qty,
		})
	}
	return rows, nil
}

// parseMoney acepta coma decimal ("12500,50") además de punto.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("valor negativo %s", s)
	}
	return d, nil
}
