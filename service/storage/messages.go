package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	chatmodel "VProject/module/chat/model"
	usermodel "VProject/module/user/model"
	"VProject/tools/errs"
)

// PGMessageStore keeps the messages table:
//
//	id bigserial, sender_id bigint, receiver_id bigint,
//	content text, timestamp timestamptz default now()
//
// Rows are never updated or deleted by the gateway.
type PGMessageStore struct {
	pool      *pgxpool.Pool
	interests InterestStore
}

func NewPGMessageStore(pool *pgxpool.Pool, interests InterestStore) *PGMessageStore {
	return &PGMessageStore{pool: pool, interests: interests}
}

func (s *PGMessageStore) Save(ctx context.Context, sender, receiver *usermodel.User, content string) (*chatmodel.Message, error) {
	msg := &chatmodel.Message{
		Sender:   sender,
		Receiver: receiver,
		Content:  content,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (sender_id, receiver_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, timestamp`,
		sender.ID, receiver.ID, content,
	).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	return msg, nil
}

func (s *PGMessageStore) History(ctx context.Context, userID, otherID int64) ([]*chatmodel.Message, error) {
	// Same predicate the session handler applies per frame; checked again
	// here so a broken caller cannot read a stranger's conversation.
	ok, err := s.interests.IsMutuallyConnected(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNoMutualConnection
	}

	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.content, m.timestamp,
		        s.id, s.username, s.email,
		        r.id, r.username, r.email
		 FROM messages m
		 JOIN users s ON s.id = m.sender_id
		 JOIN users r ON r.id = m.receiver_id
		 WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		    OR (m.sender_id = $2 AND m.receiver_id = $1)
		 ORDER BY m.timestamp, m.id`, userID, otherID)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var out []*chatmodel.Message
	for rows.Next() {
		var (
			m        chatmodel.Message
			sender   usermodel.User
			receiver usermodel.User
		)
		if err := rows.Scan(
			&m.ID, &m.Content, &m.Timestamp,
			&sender.ID, &sender.Username, &sender.Email,
			&receiver.ID, &receiver.Username, &receiver.Email,
		); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		m.Sender, m.Receiver = &sender, &receiver
		out = append(out, &m)
	}
	return out, rows.Err()
}

var _ MessageStore = (*PGMessageStore)(nil)
