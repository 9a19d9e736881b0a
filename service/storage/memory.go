package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	chatmodel "VProject/module/chat/model"
	usermodel "VProject/module/user/model"
	"VProject/tools/errs"
)

// Memory-backed store trio. Same contracts as the Postgres implementations;
// used by unit tests and by dev runs without DATABASE_URL.

type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[int64]*usermodel.User
}

func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{users: make(map[int64]*usermodel.User)}
}

func (d *MemoryUserDirectory) Put(u *usermodel.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryUserDirectory) GetUser(_ context.Context, id int64) (*usermodel.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type MemoryInterestStore struct {
	mu     sync.RWMutex
	nextID int64
	edges  map[[2]int64]*chatmodel.InterestRequest // ordered (sender, receiver)
	byID   map[int64]*chatmodel.InterestRequest
	users  UserDirectory
}

func NewMemoryInterestStore(users UserDirectory) *MemoryInterestStore {
	return &MemoryInterestStore{
		edges: make(map[[2]int64]*chatmodel.InterestRequest),
		byID:  make(map[int64]*chatmodel.InterestRequest),
		users: users,
	}
}

func (s *MemoryInterestStore) IsMutuallyConnected(_ context.Context, userA, userB int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.edges[[2]int64{userA, userB}]; ok && r.Status == chatmodel.StatusAccepted {
		return true, nil
	}
	if r, ok := s.edges[[2]int64{userB, userA}]; ok && r.Status == chatmodel.StatusAccepted {
		return true, nil
	}
	return false, nil
}

func (s *MemoryInterestStore) Create(_ context.Context, senderID, receiverID int64) (*chatmodel.InterestRequest, error) {
	if senderID == receiverID {
		return nil, errs.ErrSelfRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{senderID, receiverID}
	if _, ok := s.edges[key]; ok {
		return nil, errs.ErrRequestExists
	}
	s.nextID++
	req := &chatmodel.InterestRequest{
		ID:         s.nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     chatmodel.StatusPending,
		CreatedAt:  time.Now(),
	}
	s.edges[key] = req
	s.byID[req.ID] = req
	cp := *req
	return &cp, nil
}

func (s *MemoryInterestStore) Respond(_ context.Context, requestID, receiverID int64, accept bool) (*chatmodel.InterestRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.byID[requestID]
	if !ok || req.ReceiverID != receiverID {
		return nil, errs.ErrRequestNotFound
	}
	if accept {
		req.Status = chatmodel.StatusAccepted
	} else {
		req.Status = chatmodel.StatusRejected
	}
	cp := *req
	return &cp, nil
}

func (s *MemoryInterestStore) ConnectedUsers(ctx context.Context, userID int64) ([]*usermodel.User, error) {
	s.mu.RLock()
	peerIDs := map[int64]struct{}{}
	for key, r := range s.edges {
		if r.Status != chatmodel.StatusAccepted {
			continue
		}
		if key[0] == userID {
			peerIDs[key[1]] = struct{}{}
		} else if key[1] == userID {
			peerIDs[key[0]] = struct{}{}
		}
	}
	s.mu.RUnlock()

	ids := make([]int64, 0, len(peerIDs))
	for id := range peerIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*usermodel.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.GetUser(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type MemoryMessageStore struct {
	mu        sync.RWMutex
	nextID    int64
	messages  []*chatmodel.Message
	interests InterestStore

	// FailSaves makes Save return ErrPersistenceFailure; tests use it to
	// exercise the no-partial-state path.
	FailSaves bool
}

func NewMemoryMessageStore(interests InterestStore) *MemoryMessageStore {
	return &MemoryMessageStore{interests: interests}
}

func (s *MemoryMessageStore) Save(_ context.Context, sender, receiver *usermodel.User, content string) (*chatmodel.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return nil, errs.ErrPersistenceFailure
	}
	s.nextID++
	msg := &chatmodel.Message{
		ID:        s.nextID,
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, msg)
	cp := *msg
	return &cp, nil
}

func (s *MemoryMessageStore) History(ctx context.Context, userID, otherID int64) ([]*chatmodel.Message, error) {
	ok, err := s.interests.IsMutuallyConnected(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNoMutualConnection
	}

	s.mu.RLock()
	var out []*chatmodel.Message
	for _, m := range s.messages {
		if (m.Sender.ID == userID && m.Receiver.ID == otherID) ||
			(m.Sender.ID == otherID && m.Receiver.ID == userID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Count reports persisted messages; test helper.
func (s *MemoryMessageStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

var (
	_ UserDirectory = (*MemoryUserDirectory)(nil)
	_ InterestStore = (*MemoryInterestStore)(nil)
	_ MessageStore  = (*MemoryMessageStore)(nil)
)
