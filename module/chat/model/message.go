package model

import (
	"time"

	usermodel "VProject/module/user/model"
)

// Message is immutable once created. Sender and receiver are embedded in
// full because the wire shape serializes them inline:
// {id, sender:{id,username,email}, receiver:{id,username,email}, content, timestamp}
type Message struct {
	ID        int64           `json:"id"`
	Sender    *usermodel.User `json:"sender"`
	Receiver  *usermodel.User `json:"receiver"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}
