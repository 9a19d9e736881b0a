package model

// User is the directory entry resolved once per connection. The identity is
// immutable for the connection's lifetime; password and profile fields live
// with the HTTP collaborator, the gateway only ever sees this projection.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
