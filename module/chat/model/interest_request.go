package model

import "time"

// InterestRequest statuses. Created pending by the sender; only the
// receiver moves it to accepted/rejected.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// InterestRequest is a directed edge sender -> receiver. At most one edge
// exists per ordered (sender, receiver) pair; two users are mutually
// connected iff an accepted edge exists in either direction.
type InterestRequest struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
