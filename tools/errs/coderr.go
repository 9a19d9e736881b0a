package errs

import (
	"errors"
	"strconv"
	"strings"
)

// CodeError is the error shape crossing component boundaries inside the
// gateway. Msg is safe to surface to the client; Detail is server-side only.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail returns a copy carrying extra server-side context. The original
// sentinel stays untouched so errors.Is keeps matching.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

// Gateway error taxonomy. Codes group by concern: 11xx auth, 12xx frame,
// 13xx authorization, 14xx lookup, 15xx persistence, 19xx internal.
var (
	ErrInvalidCredential  = NewCodeError(1101, "invalid credential")
	ErrMalformedFrame     = NewCodeError(1201, "Invalid JSON format")
	ErrInvalidFrameType   = NewCodeError(1202, "Invalid message type")
	ErrMissingFields      = NewCodeError(1203, "Missing receiver_id or content")
	ErrInvalidReceiverID  = NewCodeError(1204, "Invalid receiver_id")
	ErrNotConnected       = NewCodeError(1301, "You can only message connected users")
	ErrNoMutualConnection = NewCodeError(1302, "No mutual connection")
	ErrReceiverNotFound   = NewCodeError(1401, "Receiver not found")
	ErrUserNotFound       = NewCodeError(1402, "user not found")
	ErrRequestExists      = NewCodeError(1403, "Interest request already sent")
	ErrRequestNotFound    = NewCodeError(1404, "Interest request not found")
	ErrSelfRequest        = NewCodeError(1405, "Cannot send interest to yourself")
	ErrPersistenceFailure = NewCodeError(1501, "Failed to save message")
	ErrInternal           = NewCodeError(1901, "Internal server error")
)
