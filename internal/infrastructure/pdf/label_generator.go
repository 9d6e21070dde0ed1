// Package pdf genera las etiquetas imprimibles de lotes y materiales.
//
// Cada etiqueta ocupa el ancho de la página A4:
//
//	┌──────────────────────────────────────────────┐
//	│  Nombre del material              CÓDIGO      │
//	│  ||||||||||||||||||||||||||||     ▣ QR        │
//	│  Lote: L-01   Vence: 31/01/2027  Rem.: 3 kg   │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/barcode"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-lotes/internal/application/export"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ export.LabelPrinter = (*LabelGenerator)(nil)

// LabelGenerator implementa export.LabelPrinter usando Maroto v2.
type LabelGenerator struct{}

func NewLabelGenerator() *LabelGenerator { return &LabelGenerator{} }

// BatchLabels una etiqueta por lote: Code-128 y QR con el código del lote.
func (g *LabelGenerator) BatchLabels(ctx context.Context, companyName string, labels []export.BatchLabel) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("pdf: sin etiquetas")
	}
	m := maroto.New(newConfig("Etiquetas de lotes", companyName))
	m.AddRows(headerRow(companyName, "ETIQUETAS DE LOTES"))
	for _, l := range labels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddRows(batchLabelRows(l)...)
	}
	return generate(m)
}

// MaterialLabels una etiqueta EAN-13 por material.
func (g *LabelGenerator) MaterialLabels(ctx context.Context, companyName string, labels []export.MaterialLabel) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("pdf: sin etiquetas")
	}
	m := maroto.New(newConfig("Etiquetas de materiales", companyName))
	m.AddRows(headerRow(companyName, "ETIQUETAS DE MATERIALES"))
	for _, l := range labels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddRows(materialLabelRows(l)...)
	}
	return generate(m)
}

func newConfig(title, author string) *entity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(nonEmpty(author, "inventario-lotes"), true).
		Build()
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(companyName, title string) core.Row {
	return row.New(12).Add(
		col.New(7).Add(text.New(nonEmpty(companyName, "—"), props.Text{
			Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 2,
		})),
		col.New(5).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorGray, Top: 4,
		})),
	)
}

func batchLabelRows(l export.BatchLabel) []core.Row {
	small := props.Text{Size: 8, Top: 1, Color: colorGray}
	return []core.Row{
		line.NewRow(3, props.Line{Color: colorGray, Thickness: 0.2}),
		row.New(7).Add(
			col.New(9).Add(text.New(l.MaterialName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 1})),
			col.New(3).Add(text.New(l.MaterialCode, props.Text{Size: 7, Align: align.Right, Top: 2, Color: colorGray})),
		),
		row.New(24).Add(
			col.New(9).Add(code.NewBar(l.Barcode, props.Barcode{
				Percent:    90,
				Proportion: props.Proportion{Width: 20, Height: 5},
				Type:       barcode.Code128,
			})),
			col.New(3).Add(code.NewQr(l.Barcode, props.Rect{Percent: 95, Center: true})),
		),
		row.New(6).Add(
			col.New(4).Add(text.New("Lote: "+l.BatchNumber, small)),
			col.New(4).Add(text.New("Vence: "+nonEmpty(l.Expiry, "—"), small)),
			col.New(4).Add(text.New(fmt.Sprintf("Rem.: %s %s", l.Remaining, l.Unit), props.Text{
				Size: 8, Top: 1, Align: align.Right, Color: colorGray,
			})),
		),
	}
}

func materialLabelRows(l export.MaterialLabel) []core.Row {
	return []core.Row{
		line.NewRow(3, props.Line{Color: colorGray, Thickness: 0.2}),
		row.New(7).Add(
			col.New(9).Add(text.New(l.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 1})),
			col.New(3).Add(text.New(l.Unit, props.Text{Size: 8, Align: align.Right, Top: 2, Color: colorGray})),
		),
		row.New(22).Add(
			col.New(6).Add(code.NewBar(l.Barcode, props.Barcode{
				Percent:    95,
				Proportion: props.Proportion{Width: 20, Height: 7},
				Type:       barcode.EAN,
			})),
			col.New(6).Add(
				text.New(l.Code, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6, Left: 4}),
				text.New(l.Barcode, props.Text{Size: 8, Top: 13, Left: 4, Color: colorGray}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
