package book

type IngestBookReq struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	ISBN          string  `json:"isbn" validate:"required"`
	Abstract      *string `json:"abstract,omitempty"`
	Tag           *string `json:"tags,omitempty"`
	WarehouseName string  `json:"warehouse_name" validate:"required"`
	Area          *string `json:"area,omitempty"`
	Floor         *string `json:"floor,omitempty"`
}

type UpdateBookReq struct {
	Title    *string `json:"title,omitempty"`
	Author   *string `json:"author,omitempty"`
	Abstract *string `json:"abstract,omitempty"`
	Tag      *string `json:"tags,omitempty"`
}

type UpdateLocationReq struct {
	Area  *string `json:"area,omitempty"`
	Floor *string `json:"floor,omitempty"`
}
