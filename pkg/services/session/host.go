package session

import (
	"context"
	"fmt"
)

// OpenMode is how the host opens the company file for a session.
type OpenMode int

const (
	ModeSingleUser OpenMode = iota
	ModeDoNotCare
	ModeMultiUser
)

func (m OpenMode) String() string {
	switch m {
	case ModeSingleUser:
		return "single-user"
	case ModeDoNotCare:
		return "automatic"
	case ModeMultiUser:
		return "multi-user"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// DefaultModes is the order connection modes are tried in.
var DefaultModes = []OpenMode{ModeSingleUser, ModeDoNotCare, ModeMultiUser}

// Host is the accounting host's request processor. Implementations may be
// bound to the goroutine that created them; a Host is used by one goroutine
// from creation until Release.
type Host interface {
	OpenConnection(ctx context.Context, appID, appName string) error
	BeginSession(ctx context.Context, companyFile string, mode OpenMode) (string, error)
	ProcessRequest(ctx context.Context, ticket, request string) (string, error)
	EndSession(ctx context.Context, ticket string) error
	CloseConnection(ctx context.Context) error
	Release()
}

// HostFactory creates a Host, e.g. by instantiating the SDK component.
type HostFactory func(ctx context.Context) (Host, error)

// ExchangeEntry is one request/response pair, logged verbatim.
type ExchangeEntry struct {
	ReportKey string
	Version   string
	Request   string
	Response  string
	Error     string
}

// ExchangeLogger records request/response pairs. Implementations must not
// fail the caller.
type ExchangeLogger interface {
	LogExchange(ctx context.Context, entry ExchangeEntry)
}

type nopExchangeLogger struct{}

func (nopExchangeLogger) LogExchange(context.Context, ExchangeEntry) {}
