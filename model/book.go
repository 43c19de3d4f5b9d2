// model/book.go
package model

type Book struct {
	BID      int64   `json:"bid"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	ISBN     string  `json:"isbn"`
	Abstract *string `json:"abstract,omitempty"`
	Tag      *string `json:"tags,omitempty"`
}

// BookUpdate carries the mutable catalog fields; nil means "leave as is".
type BookUpdate struct {
	Title    *string
	Author   *string
	Abstract *string
	Tag      *string
}

func (u BookUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Abstract == nil && u.Tag == nil
}
