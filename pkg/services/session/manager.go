package session

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/services/hosterr"
	"github.com/de-tools/ledger-sync/pkg/services/qbxml"
)

type Config struct {
	AppID       string
	AppName     string
	CompanyFile string
	Modes       []OpenMode
	Version     string
	Fallback    string
}

func DefaultConfig() Config {
	return Config{
		AppName:  "ledger-sync",
		Modes:    DefaultModes,
		Version:  qbxml.VersionPreferred,
		Fallback: qbxml.VersionFallback,
	}
}

// Exchange is the outcome of one executed report request.
type Exchange struct {
	Envelope qbxml.Envelope
	Response string
}

// Manager opens sessions against the accounting host and executes requests.
// Sessions are never reused across Execute calls.
type Manager struct {
	connect HostFactory
	builder *qbxml.Builder
	log     ExchangeLogger
	config  Config
}

func NewManager(connect HostFactory, builder *qbxml.Builder, log ExchangeLogger, config Config) (*Manager, error) {
	if connect == nil {
		return nil, fmt.Errorf("host factory cannot be nil")
	}
	if builder == nil {
		builder = qbxml.NewBuilder()
	}
	if log == nil {
		log = nopExchangeLogger{}
	}
	if len(config.Modes) == 0 {
		config.Modes = DefaultModes
	}
	if config.Version == "" {
		config.Version = qbxml.VersionPreferred
	}
	if config.Fallback == "" {
		config.Fallback = qbxml.VersionFallback
	}

	return &Manager{
		connect: connect,
		builder: builder,
		log:     log,
		config:  config,
	}, nil
}

// Execute builds the request for def, sends it over a fresh session and
// returns the raw response. A request the host rejects at the preferred
// protocol version is rebuilt at the fallback version and sent exactly once more.
func (m *Manager) Execute(ctx context.Context, def domain.ReportDefinition, dateRange *domain.DateRange) (Exchange, error) {
	env, err := m.builder.Build(def, dateRange, m.config.Version)
	if err != nil {
		return Exchange{}, err
	}

	var result Exchange
	err = m.WithSession(ctx, func(s *Session) error {
		resp, err := m.process(ctx, s, env)
		if err == nil {
			result = Exchange{Envelope: env, Response: resp}
			return nil
		}
		if !hosterr.IsProtocolRejected(err) || m.config.Fallback == m.config.Version {
			return err
		}

		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("report", def.Key).
			Str("version", env.Version).
			Str("fallback", m.config.Fallback).
			Msg("host rejected protocol version, retrying with fallback")

		fallback, berr := m.builder.Build(def, dateRange, m.config.Fallback)
		if berr != nil {
			return berr
		}
		resp, err = m.process(ctx, s, fallback)
		if err != nil {
			return err
		}
		result = Exchange{Envelope: fallback, Response: resp}
		return nil
	})
	if err != nil {
		return Exchange{}, err
	}
	return result, nil
}

func (m *Manager) process(ctx context.Context, s *Session, env qbxml.Envelope) (string, error) {
	resp, err := s.Process(ctx, env.Payload)

	entry := ExchangeEntry{
		ReportKey: env.ReportKey,
		Version:   env.Version,
		Request:   env.Payload,
		Response:  resp,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	m.log.LogExchange(ctx, entry)

	return resp, err
}

// WithSession opens a session, runs fn and closes the session on every exit
// path, including a panic inside fn.
func (m *Manager) WithSession(ctx context.Context, fn func(s *Session) error) (err error) {
	s, err := m.open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("session aborted by unexpected fault: %v", r)
		}
		if cerr := s.Close(ctx); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Msg("failed to close host session")
		}
	}()

	return fn(s)
}

// open walks every mode x company-file combination in order until one
// begins a session.
func (m *Manager) open(ctx context.Context) (*Session, error) {
	logger := zerolog.Ctx(ctx)

	host, err := m.connect(ctx)
	if err != nil {
		if hosterr.Classify(err).Kind == domain.ErrorKindUnknown {
			err = hosterr.Mark(err, hosterr.ErrSdkNotInstalled)
		}
		return nil, errors.Wrap(err, "failed to create request processor")
	}

	paths := []string{""}
	if m.config.CompanyFile != "" {
		paths = append(paths, m.config.CompanyFile)
	}

	var lastErr error
	attempts := 0
	for _, mode := range m.config.Modes {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				host.Release()
				return nil, err
			}

			attempts++
			ticket, err := m.begin(ctx, host, mode, path)
			if err == nil {
				logger.Debug().
					Str("mode", mode.String()).
					Str("company_file", path).
					Int("attempt", attempts).
					Msg("host session started")
				return &Session{host: host, ticket: ticket}, nil
			}

			logger.Debug().
				Err(err).
				Str("mode", mode.String()).
				Str("company_file", path).
				Int("attempt", attempts).
				Msg("connection attempt failed")
			lastErr = err
		}
	}

	host.Release()
	if lastErr == nil {
		lastErr = errors.New("no connection strategy configured")
	}
	return nil, hosterr.Mark(
		errors.Wrapf(lastErr, "all %d connection strategies exhausted", attempts),
		hosterr.ErrConnectionFailed,
	)
}

func (m *Manager) begin(ctx context.Context, host Host, mode OpenMode, path string) (string, error) {
	if err := host.OpenConnection(ctx, m.config.AppID, m.config.AppName); err != nil {
		return "", err
	}

	ticket, err := host.BeginSession(ctx, path, mode)
	if err != nil {
		if cerr := host.CloseConnection(ctx); cerr != nil {
			zerolog.Ctx(ctx).Debug().Err(cerr).Msg("failed to close connection after rejected session")
		}
		return "", err
	}
	return ticket, nil
}
