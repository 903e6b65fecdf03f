package reporting

import (
	"context"

	"github.com/jhoicas/Cantina-api/internal/application/dto"
)

// ReportRenderer genera el documento del reporte de ventas (implementación: maroto).
type ReportRenderer interface {
	RenderSalesReport(ctx context.Context, report *dto.SalesReport) ([]byte, error)
}
