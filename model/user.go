package model

import "time"

type User struct {
	UID          int64     `json:"uid"`
	Name         string    `json:"name"`
	StudentID    string    `json:"student_id"`
	Email        *string   `json:"email,omitempty"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil
}
