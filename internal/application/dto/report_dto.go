package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary resumen de ventas: total vendido, cantidad de ventas y precio medio por venta.
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SaleCount    int64           `json:"sale_count"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

// SalesReport datos consolidados para el reporte PDF.
type SalesReport struct {
	GeneratedAt       time.Time
	Summary           SalesSummary
	LowStockThreshold int64
	LowStock          []StockResponse
	Stock             []StockResponse
	RecentSales       []SaleResponse
	ProductNames      map[int64]string
}
