package dto

import "github.com/shopspring/decimal"

// AddCartItemRequest entrada para agregar un producto al carrito.
// Quantity ausente equivale a 1; presente debe ser un entero positivo.
type AddCartItemRequest struct {
	ProductID string   `json:"productId"`
	Quantity  *float64 `json:"quantity"`
}

// ChangeQuantityRequest entrada para sumar o restar una unidad.
type ChangeQuantityRequest struct {
	Delta int `json:"delta"`
}

// CartItemResponse línea del carrito con el producto resuelto.
type CartItemResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   ProductResponse `json:"product"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse salida del carrito.
type CartResponse struct {
	UserID string             `json:"userId"`
	Items  []CartItemResponse `json:"items"`
	Total  decimal.Decimal    `json:"total"`
}

// CheckoutResponse resultado de una compra.
type CheckoutResponse struct {
	Message string          `json:"msg"`
	Total   decimal.Decimal `json:"total"`
}
