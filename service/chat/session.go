package chat

import (
	"context"
	"strings"
	"sync"

	"VProject/logger"
	usermodel "VProject/module/user/model"
	"VProject/tools/decode"
	"VProject/tools/errs"
	"VProject/tools/safe"
)

// Session is the per-connection state machine:
//
//	Connecting -> Authenticated -> Open -> Closed
//
// Connecting ends at Open() — anonymous connections go straight to Closed
// without joining any group. In Open, frames arrive strictly in read order
// (the read loop calls HandleFrame sequentially) and authorization is
// re-checked on every frame, never cached across frames.
type Session struct {
	srv    *Server
	client *Client
	user   *usermodel.User
	group  string

	joined    bool
	leaveOnce sync.Once
}

func NewSession(srv *Server, client *Client, user *usermodel.User) *Session {
	return &Session{srv: srv, client: client, user: user}
}

// Open admits the connection. An absent identity rejects: no group join,
// no acknowledgement, socket closed. Otherwise the session joins the
// user's group, mirrors presence and acks with connection_established
// before the first frame is read.
func (s *Session) Open(ctx context.Context) error {
	if s.user == nil {
		logger.Warnf("[session] unauthenticated connection rejected conn=%s", s.client.ConnID)
		s.client.Close()
		return errs.ErrInvalidCredential
	}

	s.group = GroupKey(s.user.ID)
	first := s.srv.registry.Join(s.group, s.client)
	s.joined = true
	if first {
		if err := s.srv.relay.Subscribe(s.group); err != nil {
			logger.Errorf("[session] relay subscribe group=%s err=%v", s.group, err)
		}
		if err := s.srv.deps.Presence.Online(ctx, s.group); err != nil {
			logger.Errorf("[session] presence online user=%d err=%v", s.user.ID, err)
		}
	}

	s.client.Enqueue(BuildConnectionEstablished())
	logger.Infof("[session] user %s connected conn=%s", s.user.Username, s.client.ConnID)
	return nil
}

// HandleFrame processes one inbound frame. Every failure is
// connection-local: bad frames answer with an error frame and the
// connection stays open; a panic is recovered into the generic error.
func (s *Session) HandleFrame(ctx context.Context, raw []byte) {
	defer safe.RecoverWith("session.HandleFrame", func(_ any) {
		s.sendError(errs.ErrInternal.Msg)
	})

	frame, err := ParseInbound(raw)
	if err != nil {
		s.sendError(errs.ErrMalformedFrame.Msg)
		return
	}

	switch FrameType(frame) {
	case TypeChatMessage:
		s.handleChatMessage(ctx, frame)
	case TypeTypingIndicator:
		s.handleTypingIndicator(ctx, frame)
	default:
		s.sendError(errs.ErrInvalidFrameType.Msg)
	}
}

func (s *Session) handleChatMessage(ctx context.Context, frame map[string]any) {
	payload, err := decode.Map[chatPayload](frame)
	if err != nil {
		logger.Errorf("[session] chat payload decode conn=%s err=%v", s.client.ConnID, err)
		s.sendError(errs.ErrInternal.Msg)
		return
	}
	content := strings.TrimSpace(payload.Content)

	if payload.ReceiverID == nil || content == "" {
		s.sendError(errs.ErrMissingFields.Msg)
		return
	}
	receiverID, err := decode.Int64(payload.ReceiverID)
	if err != nil {
		s.sendError(errs.ErrInvalidReceiverID.Msg)
		return
	}
	if receiverID <= 0 {
		// Falsy ids count as missing, matching the field check above.
		s.sendError(errs.ErrMissingFields.Msg)
		return
	}

	connected, err := s.srv.deps.Interests.IsMutuallyConnected(ctx, s.user.ID, receiverID)
	if err != nil {
		logger.Errorf("[session] authorization check sender=%d receiver=%d err=%v", s.user.ID, receiverID, err)
		s.sendError(errs.ErrInternal.Msg)
		return
	}
	if !connected {
		s.sendError(errs.ErrNotConnected.Msg)
		return
	}

	receiver, err := s.srv.deps.Users.GetUser(ctx, receiverID)
	if err != nil {
		s.sendError(errs.ErrReceiverNotFound.Msg)
		return
	}

	msg, err := s.srv.deps.Messages.Save(ctx, s.user, receiver, content)
	if err != nil {
		logger.Errorf("[session] save message sender=%d receiver=%d err=%v", s.user.ID, receiverID, err)
		s.sendError(errs.ErrPersistenceFailure.Msg)
		return
	}

	// Confirmation to the sender, then fan-out to the receiver's group.
	// An offline receiver is not an error; they read history later.
	s.client.Enqueue(BuildMessageSent(msg))
	s.srv.SendToGroup(GroupKey(receiverID), BuildMessageReceived(msg))
}

// Typing indicators are best-effort: any validation or authorization
// failure drops the frame silently, nothing is persisted.
func (s *Session) handleTypingIndicator(ctx context.Context, frame map[string]any) {
	payload, err := decode.Map[typingPayload](frame)
	if err != nil {
		return
	}
	if payload.ReceiverID == nil {
		return
	}
	receiverID, err := decode.Int64(payload.ReceiverID)
	if err != nil || receiverID <= 0 {
		return
	}

	connected, err := s.srv.deps.Interests.IsMutuallyConnected(ctx, s.user.ID, receiverID)
	if err != nil || !connected {
		return
	}

	s.srv.SendToGroup(GroupKey(receiverID),
		BuildTypingIndicator(s.user.ID, s.user.Username, payload.IsTyping))
}

// Close leaves the group and tears the connection down. Runs exactly once
// even when both the read loop and a transport error path reach it.
func (s *Session) Close(ctx context.Context) {
	s.leaveOnce.Do(func() {
		if s.joined {
			last := s.srv.registry.Leave(s.group, s.client)
			if last {
				s.srv.relay.Unsubscribe(s.group)
				if err := s.srv.deps.Presence.Offline(ctx, s.group); err != nil {
					logger.Errorf("[session] presence offline user=%d err=%v", s.user.ID, err)
				}
			}
		}
		s.client.Close()
		if s.user != nil {
			logger.Infof("[session] user %s disconnected conn=%s", s.user.Username, s.client.ConnID)
		}
	})
}

func (s *Session) sendError(message string) {
	s.client.Enqueue(BuildError(message))
}
