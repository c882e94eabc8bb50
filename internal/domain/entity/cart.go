package entity

import "time"

// Cart es el carrito de compras de un usuario (uno por usuario).
type Cart struct {
	UserID    string
	Items     []CartItem
	UpdatedAt time.Time
}

// CartItem es una línea del carrito. Quantity siempre es > 0 mientras la línea exista.
// Product es nil cuando el producto referenciado ya no existe en el catálogo (línea huérfana).
type CartItem struct {
	ProductID string
	Quantity  int
	Product   *Product
}

// Find devuelve el índice de la línea del producto o -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Remove elimina la línea del producto. Devuelve false si no estaba.
func (c *Cart) Remove(productID string) bool {
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// PruneOrphans descarta las líneas cuyo producto ya no existe. Devuelve true si cambió el carrito.
func (c *Cart) PruneOrphans() bool {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Product != nil {
			kept = append(kept, it)
		}
	}
	changed := len(kept) != len(c.Items)
	c.Items = kept
	return changed
}
