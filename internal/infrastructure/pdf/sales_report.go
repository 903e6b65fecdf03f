// Package pdf genera el reporte de ventas de la cantina con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la cantina  │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Total vendido / Ventas / Ticket medio              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  STOCK BAJO: Código | Producto | Cantidad                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VENTAS RECIENTES: Fecha | Producto | Cant | P.Unit | Total  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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

	"github.com/jhoicas/Cantina-api/internal/application/dto"
	"github.com/jhoicas/Cantina-api/internal/application/reporting"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ reporting.ReportRenderer = (*SalesReportGenerator)(nil)

// SalesReportGenerator implementa reporting.ReportRenderer usando Maroto v2.
type SalesReportGenerator struct {
	title string
}

// NewSalesReportGenerator construye el generador. title encabeza el documento.
func NewSalesReportGenerator(title string) *SalesReportGenerator {
	if title == "" {
		title = "Cantina"
	}
	return &SalesReportGenerator{title: title}
}

// RenderSalesReport genera el PDF y devuelve sus bytes.
func (g *SalesReportGenerator) RenderSalesReport(_ context.Context, report *dto.SalesReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de ventas", true).
		WithAuthor(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle(fmt.Sprintf("STOCK BAJO (menos de %d unidades)", report.LowStockThreshold)))
	m.AddRows(lowStockRows(report)...)
	m.AddRows(line.NewRow(3))

	m.AddRows(sectionTitle("VENTAS RECIENTES"))
	m.AddRows(salesHeaderRow())
	m.AddRows(salesRows(report.RecentSales)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *SalesReportGenerator) headerRow(report *dto.SalesReport) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(g.title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Reporte de ventas y stock", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func summaryRow(s dto.SalesSummary) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Color: colorPrimary, Top: 6}),
		)
	}
	return row.New(16).Add(
		cell("TOTAL VENDIDO", formatMoney(s.TotalRevenue)),
		cell("VENTAS", fmt.Sprintf("%d", s.SaleCount)),
		cell("TICKET MEDIO", formatMoney(s.AveragePrice)),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
	))
}

func lowStockRows(report *dto.SalesReport) []core.Row {
	if len(report.LowStock) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin productos con stock bajo.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		))}
	}
	rows := make([]core.Row, 0, len(report.LowStock))
	for _, s := range report.LowStock {
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", s.ProductCode), props.Text{Size: 8, Top: 1})),
			col.New(7).Add(text.New(report.ProductNames[s.ProductCode], props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(fmt.Sprintf("%d", s.Quantity), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorAlert, Top: 1, Right: 1,
			})),
		))
	}
	return rows
}

func salesHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Fecha", 3, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Center),
		h("P. Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func salesRows(sales []dto.SaleResponse) []core.Row {
	if len(sales) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin ventas registradas.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		))}
	}
	rows := make([]core.Row, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, row.New(6).Add(
			col.New(3).Add(text.New(s.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(s.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", s.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatMoney(s.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(s.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney formatea con separador de miles "." y decimales ",".
// Ej: 1234.5 → "R$ 1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "R$ " + string(buf) + "," + frac
}
