package storage

import (
	"context"
	"errors"
	"testing"

	chatmodel "VProject/module/chat/model"
	usermodel "VProject/module/user/model"
	"VProject/tools/errs"
)

func seedDirectory(ids ...int64) *MemoryUserDirectory {
	dir := NewMemoryUserDirectory()
	names := map[int64]string{1: "alice", 2: "bob", 3: "carol"}
	for _, id := range ids {
		name := names[id]
		dir.Put(&usermodel.User{ID: id, Username: name, Email: name + "@example.com"})
	}
	return dir
}

func TestUserDirectoryLookup(t *testing.T) {
	dir := seedDirectory(1)
	u, err := dir.GetUser(context.Background(), 1)
	if err != nil || u.Username != "alice" {
		t.Fatalf("GetUser(1) = %v, %v", u, err)
	}
	if _, err := dir.GetUser(context.Background(), 9); !errors.Is(err, errs.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestInterestCreateRules(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryInterestStore(seedDirectory(1, 2))

	if _, err := s.Create(ctx, 1, 1); !errors.Is(err, errs.ErrSelfRequest) {
		t.Fatalf("self request: %v", err)
	}
	req, err := s.Create(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != chatmodel.StatusPending {
		t.Fatalf("new request status = %q", req.Status)
	}
	if _, err := s.Create(ctx, 1, 2); !errors.Is(err, errs.ErrRequestExists) {
		t.Fatalf("duplicate request: %v", err)
	}
}

func TestInterestMutualityBothDirections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryInterestStore(seedDirectory(1, 2))

	ok, err := s.IsMutuallyConnected(ctx, 1, 2)
	if err != nil || ok {
		t.Fatalf("no edge: got %v, %v", ok, err)
	}

	req, err := s.Create(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Pending is not connected.
	if ok, _ := s.IsMutuallyConnected(ctx, 1, 2); ok {
		t.Fatalf("pending edge counted as connected")
	}

	if _, err := s.Respond(ctx, req.ID, 2, true); err != nil {
		t.Fatalf("respond: %v", err)
	}
	// Accepted edge holds in both directions.
	for _, pair := range [][2]int64{{1, 2}, {2, 1}} {
		ok, err := s.IsMutuallyConnected(ctx, pair[0], pair[1])
		if err != nil || !ok {
			t.Fatalf("accepted edge %v: got %v, %v", pair, ok, err)
		}
	}

	// Rejection revokes.
	if _, err := s.Respond(ctx, req.ID, 2, false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if ok, _ := s.IsMutuallyConnected(ctx, 1, 2); ok {
		t.Fatalf("rejected edge counted as connected")
	}
}

func TestInterestRespondReceiverOnly(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryInterestStore(seedDirectory(1, 2))
	req, err := s.Create(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// The sender cannot answer their own request.
	if _, err := s.Respond(ctx, req.ID, 1, true); !errors.Is(err, errs.ErrRequestNotFound) {
		t.Fatalf("sender respond: %v", err)
	}
	if _, err := s.Respond(ctx, 999, 2, true); !errors.Is(err, errs.ErrRequestNotFound) {
		t.Fatalf("unknown request: %v", err)
	}
}

func TestConnectedUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryInterestStore(seedDirectory(1, 2, 3))

	r1, _ := s.Create(ctx, 1, 2)
	s.Respond(ctx, r1.ID, 2, true)
	r2, _ := s.Create(ctx, 3, 1)
	s.Respond(ctx, r2.ID, 1, true)
	s.Create(ctx, 2, 3) // pending, must not appear

	peers, err := s.ConnectedUsers(ctx, 1)
	if err != nil {
		t.Fatalf("connected users: %v", err)
	}
	if len(peers) != 2 || peers[0].ID != 2 || peers[1].ID != 3 {
		t.Fatalf("peers of 1 = %v", peers)
	}
	peers, _ = s.ConnectedUsers(ctx, 2)
	if len(peers) != 1 || peers[0].ID != 1 {
		t.Fatalf("peers of 2 = %v", peers)
	}
}

func TestMessageHistoryRequiresMutualConnection(t *testing.T) {
	ctx := context.Background()
	dir := seedDirectory(1, 2)
	interests := NewMemoryInterestStore(dir)
	store := NewMemoryMessageStore(interests)

	if _, err := store.History(ctx, 1, 2); !errors.Is(err, errs.ErrNoMutualConnection) {
		t.Fatalf("expected ErrNoMutualConnection, got %v", err)
	}
}

func TestMessageHistoryOrderingAndPairFilter(t *testing.T) {
	ctx := context.Background()
	dir := seedDirectory(1, 2, 3)
	interests := NewMemoryInterestStore(dir)
	store := NewMemoryMessageStore(interests)

	r1, _ := interests.Create(ctx, 1, 2)
	interests.Respond(ctx, r1.ID, 2, true)
	r2, _ := interests.Create(ctx, 1, 3)
	interests.Respond(ctx, r2.ID, 3, true)

	alice, _ := dir.GetUser(ctx, 1)
	bob, _ := dir.GetUser(ctx, 2)
	carol, _ := dir.GetUser(ctx, 3)

	store.Save(ctx, alice, bob, "one")
	store.Save(ctx, bob, alice, "two")
	store.Save(ctx, alice, carol, "other thread")
	store.Save(ctx, alice, bob, "three")

	history, err := store.History(ctx, 1, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	want := []string{"one", "two", "three"}
	for i, m := range history {
		if m.Content != want[i] {
			t.Fatalf("history[%d] = %q, want %q", i, m.Content, want[i])
		}
	}
	// Both directions see the same conversation.
	mirror, err := store.History(ctx, 2, 1)
	if err != nil || len(mirror) != 3 {
		t.Fatalf("mirror history = %d msgs, %v", len(mirror), err)
	}
}

func TestMessageSaveFailureToggle(t *testing.T) {
	ctx := context.Background()
	dir := seedDirectory(1, 2)
	store := NewMemoryMessageStore(NewMemoryInterestStore(dir))
	store.FailSaves = true

	alice, _ := dir.GetUser(ctx, 1)
	bob, _ := dir.GetUser(ctx, 2)
	if _, err := store.Save(ctx, alice, bob, "x"); !errors.Is(err, errs.ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if store.Count() != 0 {
		t.Fatalf("failed save persisted a message")
	}
}
