package session

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/services/hosterr"
	"github.com/de-tools/ledger-sync/pkg/services/qbxml"
)

type attempt struct {
	Mode        OpenMode
	CompanyFile string
}

// fakeHost simulates the request processor and records every call.
type fakeHost struct {
	accept   func(a attempt) bool
	respond  func(request string) (string, error)
	attempts []attempt
	requests []string
	calls    []string
}

func (h *fakeHost) OpenConnection(_ context.Context, _, _ string) error {
	h.calls = append(h.calls, "OpenConnection")
	return nil
}

func (h *fakeHost) BeginSession(_ context.Context, companyFile string, mode OpenMode) (string, error) {
	h.calls = append(h.calls, "BeginSession")
	a := attempt{Mode: mode, CompanyFile: companyFile}
	h.attempts = append(h.attempts, a)
	if h.accept != nil && !h.accept(a) {
		return "", &hosterr.HostError{Op: "BeginSession", Code: 0x80040416}
	}
	return "ticket-1", nil
}

func (h *fakeHost) ProcessRequest(_ context.Context, ticket, request string) (string, error) {
	h.calls = append(h.calls, "ProcessRequest")
	h.requests = append(h.requests, request)
	if ticket != "ticket-1" {
		return "", errors.New("bad ticket")
	}
	if h.respond == nil {
		return "<QBXML/>", nil
	}
	return h.respond(request)
}

func (h *fakeHost) EndSession(context.Context, string) error {
	h.calls = append(h.calls, "EndSession")
	return nil
}

func (h *fakeHost) CloseConnection(context.Context) error {
	h.calls = append(h.calls, "CloseConnection")
	return nil
}

func (h *fakeHost) Release() {
	h.calls = append(h.calls, "Release")
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []ExchangeEntry
}

func (l *recordingLogger) LogExchange(_ context.Context, e ExchangeEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

var openOrders = domain.ReportDefinition{
	Key:        "open_sales_orders",
	ReportType: "OpenSalesOrderByCustomer",
	Category:   domain.DetailQuery,
}

func newManager(t *testing.T, host *fakeHost, log ExchangeLogger, cfg Config) *Manager {
	m, err := NewManager(func(context.Context) (Host, error) { return host, nil }, qbxml.NewBuilder(), log, cfg)
	require.NoError(t, err)
	return m
}

func TestManager_ConnectionFallbackOrder(t *testing.T) {
	const path = `C:\Company\books.qbw`
	host := &fakeHost{
		accept: func(a attempt) bool { return a.Mode == ModeMultiUser && a.CompanyFile == path },
	}
	cfg := DefaultConfig()
	cfg.CompanyFile = path
	m := newManager(t, host, nil, cfg)

	_, err := m.Execute(context.Background(), openOrders, nil)
	require.NoError(t, err)

	assert.Equal(t, []attempt{
		{ModeSingleUser, ""},
		{ModeSingleUser, path},
		{ModeDoNotCare, ""},
		{ModeDoNotCare, path},
		{ModeMultiUser, ""},
		{ModeMultiUser, path},
	}, host.attempts)

	tail := host.calls[len(host.calls)-4:]
	assert.Equal(t, []string{"ProcessRequest", "EndSession", "CloseConnection", "Release"}, tail)
}

func TestManager_NoCompanyFileSkipsPathAttempts(t *testing.T) {
	host := &fakeHost{accept: func(attempt) bool { return false }}
	m := newManager(t, host, nil, DefaultConfig())

	_, err := m.Execute(context.Background(), openOrders, nil)
	require.Error(t, err)

	assert.Len(t, host.attempts, 3)
	assert.Equal(t, domain.ErrorKindConnectionFailed, hosterr.Classify(err).Kind)
	assert.Equal(t, "Release", host.calls[len(host.calls)-1])
	assert.NotContains(t, host.calls, "ProcessRequest")
	assert.NotContains(t, host.calls, "EndSession")
}

func TestManager_VersionFallback(t *testing.T) {
	host := &fakeHost{
		respond: func(request string) (string, error) {
			if strings.Contains(request, `<?qbxml version="16.0"?>`) {
				return "", &hosterr.HostError{Op: "ProcessRequest", Code: 0x80040400}
			}
			return "<QBXML><QBXMLMsgsRs/></QBXML>", nil
		},
	}
	log := &recordingLogger{}
	m := newManager(t, host, log, DefaultConfig())

	ex, err := m.Execute(context.Background(), openOrders, nil)
	require.NoError(t, err)

	assert.Equal(t, qbxml.VersionFallback, ex.Envelope.Version)
	assert.Equal(t, "<QBXML><QBXMLMsgsRs/></QBXML>", ex.Response)
	require.Len(t, host.requests, 2)
	assert.Contains(t, host.requests[1], `<?qbxml version="13.0"?>`)

	require.Len(t, log.entries, 2)
	assert.Equal(t, qbxml.VersionPreferred, log.entries[0].Version)
	assert.NotEmpty(t, log.entries[0].Error)
	assert.Equal(t, qbxml.VersionFallback, log.entries[1].Version)
	assert.Empty(t, log.entries[1].Error)
}

func TestManager_VersionFallbackOnlyOnce(t *testing.T) {
	host := &fakeHost{
		respond: func(string) (string, error) {
			return "", &hosterr.HostError{Op: "ProcessRequest", Code: 0x80040400}
		},
	}
	m := newManager(t, host, nil, DefaultConfig())

	_, err := m.Execute(context.Background(), openOrders, nil)
	require.Error(t, err)

	assert.Len(t, host.requests, 2)
	assert.Equal(t, domain.ErrorKindProtocolRejected, hosterr.Classify(err).Kind)
	assert.Equal(t, "Release", host.calls[len(host.calls)-1])
}

func TestManager_NoVersionFallbackOnTransportFailure(t *testing.T) {
	host := &fakeHost{
		respond: func(string) (string, error) {
			return "", &hosterr.HostError{Op: "ProcessRequest", Code: 0x80040408}
		},
	}
	m := newManager(t, host, nil, DefaultConfig())

	_, err := m.Execute(context.Background(), openOrders, nil)
	require.Error(t, err)
	assert.Len(t, host.requests, 1)
	assert.Contains(t, host.calls, "EndSession")
}

func TestManager_FactoryFailure(t *testing.T) {
	m, err := NewManager(func(context.Context) (Host, error) {
		return nil, errors.New("CoCreateInstance failed")
	}, nil, nil, DefaultConfig())
	require.NoError(t, err)

	_, err = m.Execute(context.Background(), openOrders, nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorKindSdkNotInstalled, hosterr.Classify(err).Kind)
}

func TestManager_InvalidRangeNeverConnects(t *testing.T) {
	connected := false
	m, err := NewManager(func(context.Context) (Host, error) {
		connected = true
		return &fakeHost{}, nil
	}, nil, nil, DefaultConfig())
	require.NoError(t, err)

	def := openOrders
	def.UsesDateRange = true
	_, err = m.Execute(context.Background(), def, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.False(t, connected)
}

func TestManager_WithSessionClosesOnPanic(t *testing.T) {
	host := &fakeHost{}
	m := newManager(t, host, nil, DefaultConfig())

	err := m.WithSession(context.Background(), func(s *Session) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"EndSession", "CloseConnection", "Release"}, host.calls[len(host.calls)-3:])
}

func TestSession_NotReusableAfterClose(t *testing.T) {
	host := &fakeHost{}
	m := newManager(t, host, nil, DefaultConfig())

	var leaked *Session
	err := m.WithSession(context.Background(), func(s *Session) error {
		leaked = s
		return nil
	})
	require.NoError(t, err)

	_, err = leaked.Process(context.Background(), "<QBXML/>")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.NoError(t, leaked.Close(context.Background()))
}
