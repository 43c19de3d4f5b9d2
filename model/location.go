// model/location.go
package model

// LocationRecord places a book's copies inside one warehouse. A location row
// exists only while the matching InventoryRecord exists; the composite key is
// immutable after creation, only area/floor may change.
type LocationRecord struct {
	LocID         int64   `json:"loc_id"`
	BookID        int64   `json:"book_id"`
	WarehouseName string  `json:"warehouse_name"`
	Area          *string `json:"area,omitempty"`
	Floor         *string `json:"floor,omitempty"`
}

// BookDetail is the joined Book + Location + quantity read used as the
// book-detail response.
type BookDetail struct {
	Book          Book    `json:"book"`
	WarehouseName string  `json:"warehouse_name"`
	Area          *string `json:"area,omitempty"`
	Floor         *string `json:"floor,omitempty"`
	Quantity      int64   `json:"quantity"`
	TagName       string  `json:"tag_name,omitempty"`
}
