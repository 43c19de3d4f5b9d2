// model/inventory.go
package model

// InventoryRecord is one (book, warehouse) stock row. Unique on the composite
// key; quantity never goes below zero.
type InventoryRecord struct {
	InvID         int64  `json:"inv_id"`
	BookID        int64  `json:"book_id"`
	WarehouseName string `json:"warehouse_name"`
	Quantity      int64  `json:"quantity"`
}
