// Package reporting consultas de solo lectura sobre ventas y stock.
// Las lecturas son puntuales: no se coordinan con ventas concurrentes.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Cantina-api/internal/application/dto"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

// reportSalesLimit ventas recientes incluidas en el PDF.
const reportSalesLimit = 50

// UseCase reportes de ventas y stock.
type UseCase struct {
	ledger            repository.Ledger
	products          repository.ProductRepository
	renderer          ReportRenderer
	lowStockThreshold int64
	log               *logger.Logger
	now               func() time.Time
}

// NewUseCase construye el caso de uso. renderer puede ser nil si no se expone el PDF.
func NewUseCase(
	ledger repository.Ledger,
	products repository.ProductRepository,
	renderer ReportRenderer,
	lowStockThreshold int64,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		ledger:            ledger,
		products:          products,
		renderer:          renderer,
		lowStockThreshold: lowStockThreshold,
		log:               log,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// LowStockThreshold umbral configurado por defecto.
func (uc *UseCase) LowStockThreshold() int64 { return uc.lowStockThreshold }

// TotalRevenue suma de los totales de todas las ventas (0 si no hay).
func (uc *UseCase) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	agg, err := uc.aggregate(ctx, repository.SaleFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	return agg.TotalRevenue, nil
}

// SaleCount número de ventas registradas.
func (uc *UseCase) SaleCount(ctx context.Context) (int64, error) {
	agg, err := uc.aggregate(ctx, repository.SaleFilter{})
	if err != nil {
		return 0, err
	}
	return agg.Count, nil
}

// AveragePrice total vendido / cantidad de ventas, redondeado a centavos. 0 sin ventas.
func (uc *UseCase) AveragePrice(ctx context.Context) (decimal.Decimal, error) {
	agg, err := uc.aggregate(ctx, repository.SaleFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	return average(agg.TotalRevenue, agg.Count), nil
}

// Summary total, cantidad y promedio en una sola lectura (consistentes entre sí).
func (uc *UseCase) Summary(ctx context.Context) (*dto.SalesSummary, error) {
	agg, err := uc.aggregate(ctx, repository.SaleFilter{})
	if err != nil {
		return nil, err
	}
	return summaryOf(agg), nil
}

// LowStock productos con quantity < threshold, por código ascendente.
func (uc *UseCase) LowStock(ctx context.Context, threshold int64) ([]*entity.Stock, error) {
	if threshold <= 0 {
		return nil, domain.InvalidInput("umbral %d debe ser positivo", threshold)
	}
	list, err := uc.ledger.ListStock(ctx, repository.StockFilter{Below: &threshold})
	if err != nil {
		return nil, domain.NewStorageError("list stock", err)
	}
	return list, nil
}

// SalesForProduct ventas de un producto, de la más reciente a la más antigua. limit 0 = sin límite.
func (uc *UseCase) SalesForProduct(ctx context.Context, code int64, limit int) ([]*entity.Sale, error) {
	if code <= 0 {
		return nil, domain.InvalidInput("código de producto %d debe ser positivo", code)
	}
	if limit < 0 {
		return nil, domain.InvalidInput("límite %d no puede ser negativo", limit)
	}
	agg, err := uc.aggregate(ctx, repository.SaleFilter{ProductCode: &code, WithRecords: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return agg.Records, nil
}

// ListSales todas las ventas, de la más reciente a la más antigua. limit 0 = sin límite.
func (uc *UseCase) ListSales(ctx context.Context, limit int) ([]*entity.Sale, error) {
	if limit < 0 {
		return nil, domain.InvalidInput("límite %d no puede ser negativo", limit)
	}
	agg, err := uc.aggregate(ctx, repository.SaleFilter{WithRecords: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return agg.Records, nil
}

// StockLevel cantidad disponible; 0 si el producto nunca tuvo stock.
func (uc *UseCase) StockLevel(ctx context.Context, code int64) (int64, error) {
	st, err := uc.ledger.GetStock(ctx, code)
	if err != nil {
		return 0, domain.NewStorageError("get stock", err)
	}
	if st == nil {
		return 0, nil
	}
	return st.Quantity, nil
}

// ListStock todo el stock por código ascendente.
func (uc *UseCase) ListStock(ctx context.Context) ([]*entity.Stock, error) {
	list, err := uc.ledger.ListStock(ctx, repository.StockFilter{})
	if err != nil {
		return nil, domain.NewStorageError("list stock", err)
	}
	return list, nil
}

// SalesReportPDF arma el reporte consolidado y lo renderiza. Devuelve el documento y su nombre de archivo.
func (uc *UseCase) SalesReportPDF(ctx context.Context) ([]byte, string, error) {
	if uc.renderer == nil {
		return nil, "", fmt.Errorf("reporte de ventas: %w", domain.ErrConflict)
	}
	report, err := uc.BuildSalesReport(ctx)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.renderer.RenderSalesReport(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("render sales report: %w", err)
	}
	filename := fmt.Sprintf("ventas_%s.pdf", report.GeneratedAt.Format("20060102_150405"))
	uc.log.Info().Str("file", filename).Int("bytes", len(doc)).Msg("reporte de ventas generado")
	return doc, filename, nil
}

// BuildSalesReport lee ventas, stock y catálogo en paralelo.
func (uc *UseCase) BuildSalesReport(ctx context.Context) (*dto.SalesReport, error) {
	var (
		agg      *repository.SaleAggregate
		stock    []*entity.Stock
		products []*entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agg, err = uc.aggregate(gctx, repository.SaleFilter{WithRecords: true, Limit: reportSalesLimit})
		return err
	})
	g.Go(func() error {
		var err error
		stock, err = uc.ListStock(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = uc.products.List(gctx)
		if err != nil {
			return domain.NewStorageError("list products", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &dto.SalesReport{
		GeneratedAt:       uc.now(),
		Summary:           *summaryOf(agg),
		LowStockThreshold: uc.lowStockThreshold,
		LowStock:          []dto.StockResponse{},
		Stock:             dto.ToStockList(stock),
		RecentSales:       dto.ToSaleList(agg.Records),
		ProductNames:      make(map[int64]string, len(products)),
	}
	for _, p := range products {
		report.ProductNames[p.Code] = p.Name
	}
	for _, s := range stock {
		if s.Quantity < uc.lowStockThreshold {
			report.LowStock = append(report.LowStock, *dto.ToStockResponse(s))
		}
	}
	return report, nil
}

func (uc *UseCase) aggregate(ctx context.Context, filter repository.SaleFilter) (*repository.SaleAggregate, error) {
	agg, err := uc.ledger.AggregateSales(ctx, filter)
	if err != nil {
		return nil, domain.NewStorageError("aggregate sales", err)
	}
	return agg, nil
}

func summaryOf(agg *repository.SaleAggregate) *dto.SalesSummary {
	return &dto.SalesSummary{
		TotalRevenue: agg.TotalRevenue,
		SaleCount:    agg.Count,
		AveragePrice: average(agg.TotalRevenue, agg.Count),
	}
}

func average(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(count), 2)
}
