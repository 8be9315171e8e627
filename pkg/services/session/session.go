package session

import (
	"context"

	"github.com/cockroachdb/errors"
)

var ErrSessionClosed = errors.New("session is closed")

// Session is an open host session. It is owned by Manager.WithSession and
// unusable once closed.
type Session struct {
	host   Host
	ticket string
	closed bool
}

func (s *Session) Ticket() string {
	return s.ticket
}

func (s *Session) Process(ctx context.Context, request string) (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	return s.host.ProcessRequest(ctx, s.ticket, request)
}

// Close ends the session, closes the connection and releases the host.
// It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.host.Release()

	var result error
	if err := s.host.EndSession(ctx, s.ticket); err != nil {
		result = errors.Wrap(err, "end session")
	}
	if err := s.host.CloseConnection(ctx); err != nil {
		result = errors.CombineErrors(result, errors.Wrap(err, "close connection"))
	}
	return result
}
