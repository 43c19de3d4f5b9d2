package order

type CreateOrderReq struct {
	UserID        int64  `json:"user_id" validate:"required,gt=0"`
	BookID        int64  `json:"book_id" validate:"required,gt=0"`
	WarehouseName string `json:"warehouse_name" validate:"required"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required,oneof=borrowed returned lost lost_and_returned"`
}
