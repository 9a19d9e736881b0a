package storage

import (
	"context"

	chatmodel "VProject/module/chat/model"
	usermodel "VProject/module/user/model"
)

// UserDirectory resolves identities by id. Registration and profile
// mutation belong to the HTTP collaborator; the gateway only reads.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*usermodel.User, error)
}

// InterestStore owns the social graph edges. IsMutuallyConnected is the
// authorization predicate consulted before every message and typing relay;
// callers must not cache it past a single inbound frame.
type InterestStore interface {
	IsMutuallyConnected(ctx context.Context, userA, userB int64) (bool, error)

	// Create inserts a pending sender->receiver edge. Fails with
	// errs.ErrSelfRequest or errs.ErrRequestExists.
	Create(ctx context.Context, senderID, receiverID int64) (*chatmodel.InterestRequest, error)

	// Respond moves a pending edge to accepted/rejected. Only the receiver
	// may respond; anyone else gets errs.ErrRequestNotFound.
	Respond(ctx context.Context, requestID, receiverID int64, accept bool) (*chatmodel.InterestRequest, error)

	// ConnectedUsers lists the distinct peers holding an accepted edge with
	// userID in either direction.
	ConnectedUsers(ctx context.Context, userID int64) ([]*usermodel.User, error)
}

// MessageStore is append-only from the gateway's perspective.
type MessageStore interface {
	Save(ctx context.Context, sender, receiver *usermodel.User, content string) (*chatmodel.Message, error)

	// History returns the conversation between the two users ascending by
	// timestamp. It re-verifies the mutual connection itself (defense in
	// depth) and fails with errs.ErrNoMutualConnection.
	History(ctx context.Context, userID, otherID int64) ([]*chatmodel.Message, error)
}
