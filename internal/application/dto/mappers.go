package dto

import "github.com/jhoicas/Cantina-api/internal/domain/entity"

// ToProductResponse convierte la entidad en su salida HTTP.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		Code:      p.Code,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToStockResponse convierte la entidad en su salida HTTP.
func ToStockResponse(s *entity.Stock) *StockResponse {
	if s == nil {
		return nil
	}
	return &StockResponse{ProductCode: s.ProductCode, Quantity: s.Quantity, UpdatedAt: s.UpdatedAt}
}

// ToSaleResponse convierte la entidad en su salida HTTP.
func ToSaleResponse(s *entity.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	return &SaleResponse{
		ID:          s.ID,
		ProductCode: s.ProductCode,
		ProductName: s.ProductName,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		Total:       s.Total,
		CreatedAt:   s.CreatedAt,
	}
}

// ToStockList mapea un listado de stock.
func ToStockList(list []*entity.Stock) []StockResponse {
	out := make([]StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToStockResponse(s))
	}
	return out
}

// ToSaleList mapea un listado de ventas.
func ToSaleList(list []*entity.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToSaleResponse(s))
	}
	return out
}
