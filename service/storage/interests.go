package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	chatmodel "VProject/module/chat/model"
	usermodel "VProject/module/user/model"
	"VProject/tools/errs"
)

// PGInterestStore keeps the interest_requests table:
//
//	id bigserial, sender_id bigint, receiver_id bigint,
//	status text, created_at timestamptz default now(),
//	unique (sender_id, receiver_id)
type PGInterestStore struct {
	pool *pgxpool.Pool
}

func NewPGInterestStore(pool *pgxpool.Pool) *PGInterestStore {
	return &PGInterestStore{pool: pool}
}

func (s *PGInterestStore) IsMutuallyConnected(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM interest_requests
			WHERE status = 'accepted'
			  AND ((sender_id = $1 AND receiver_id = $2)
			    OR (sender_id = $2 AND receiver_id = $1))
		)`, userA, userB,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "query mutual connection")
	}
	return exists, nil
}

func (s *PGInterestStore) Create(ctx context.Context, senderID, receiverID int64) (*chatmodel.InterestRequest, error) {
	if senderID == receiverID {
		return nil, errs.ErrSelfRequest
	}
	var req chatmodel.InterestRequest
	err := s.pool.QueryRow(ctx,
		`INSERT INTO interest_requests (sender_id, receiver_id, status)
		 VALUES ($1, $2, 'pending')
		 ON CONFLICT (sender_id, receiver_id) DO NOTHING
		 RETURNING id, sender_id, receiver_id, status, created_at`,
		senderID, receiverID,
	).Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict path: the ordered pair already has its one edge.
		return nil, errs.ErrRequestExists
	}
	if err != nil {
		return nil, errors.Wrap(err, "insert interest request")
	}
	return &req, nil
}

func (s *PGInterestStore) Respond(ctx context.Context, requestID, receiverID int64, accept bool) (*chatmodel.InterestRequest, error) {
	status := chatmodel.StatusRejected
	if accept {
		status = chatmodel.StatusAccepted
	}
	var req chatmodel.InterestRequest
	err := s.pool.QueryRow(ctx,
		`UPDATE interest_requests SET status = $1
		 WHERE id = $2 AND receiver_id = $3
		 RETURNING id, sender_id, receiver_id, status, created_at`,
		status, requestID, receiverID,
	).Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrRequestNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "update interest request")
	}
	return &req, nil
}

func (s *PGInterestStore) ConnectedUsers(ctx context.Context, userID int64) ([]*usermodel.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT u.id, u.username, u.email
		 FROM interest_requests r
		 JOIN users u ON u.id = CASE WHEN r.sender_id = $1 THEN r.receiver_id ELSE r.sender_id END
		 WHERE r.status = 'accepted' AND (r.sender_id = $1 OR r.receiver_id = $1)
		 ORDER BY u.id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query connected users")
	}
	defer rows.Close()

	var out []*usermodel.User
	for rows.Next() {
		var u usermodel.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, errors.Wrap(err, "scan connected user")
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

var _ InterestStore = (*PGInterestStore)(nil)
