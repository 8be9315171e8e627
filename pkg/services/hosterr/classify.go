package hosterr

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/services/qbxml"
)

// Classification is the user-facing view of a failure.
type Classification struct {
	Kind     domain.ErrorKind
	Message  string
	Remedies []string
}

func (c Classification) Descriptor() *domain.ErrorDescriptor {
	return &domain.ErrorDescriptor{
		Kind:     c.Kind,
		Message:  c.Message,
		Remedies: append([]string(nil), c.Remedies...),
	}
}

var markers = []struct {
	marker error
	kind   domain.ErrorKind
}{
	{ErrSdkNotInstalled, domain.ErrorKindSdkNotInstalled},
	{ErrSdkNotRegistered, domain.ErrorKindSdkNotRegistered},
	{ErrAccessDenied, domain.ErrorKindAccessDenied},
	{ErrFileNotFound, domain.ErrorKindFileNotFound},
	{ErrProtocolRejected, domain.ErrorKindProtocolRejected},
}

var hresults = map[uint32]domain.ErrorKind{
	0x80040154: domain.ErrorKindSdkNotRegistered, // REGDB_E_CLASSNOTREG
	0x800401F3: domain.ErrorKindSdkNotInstalled,  // CO_E_CLASSSTRING
	0x80070005: domain.ErrorKindAccessDenied,     // E_ACCESSDENIED
	0x80070002: domain.ErrorKindFileNotFound,
	0x80040400: domain.ErrorKindProtocolRejected, // error parsing the request stream
	0x80040403: domain.ErrorKindFileNotFound,     // could not open the specified file
	0x80040408: domain.ErrorKindConnectionFailed, // could not start the host application
	0x80040416: domain.ErrorKindFileNotFound,     // no company file open and none given
	0x80040417: domain.ErrorKindConnectionFailed, // a different company file is open
	0x80040418: domain.ErrorKindAccessDenied,     // application not yet authorized
	0x8004041A: domain.ErrorKindAccessDenied,
	0x8004041D: domain.ErrorKindAccessDenied,
	0x80040420: domain.ErrorKindAccessDenied, // user denied access
	0x80040422: domain.ErrorKindConnectionFailed,
	0x80040424: domain.ErrorKindConnectionFailed, // host still initializing
}

var patterns = []struct {
	needle string
	kind   domain.ErrorKind
}{
	{"class not registered", domain.ErrorKindSdkNotRegistered},
	{"invalid class string", domain.ErrorKindSdkNotInstalled},
	{"qbxmlrp2", domain.ErrorKindSdkNotInstalled},
	{"access denied", domain.ErrorKindAccessDenied},
	{"permission denied", domain.ErrorKindAccessDenied},
	{"not allowed to", domain.ErrorKindAccessDenied},
	{"could not open the specified file", domain.ErrorKindFileNotFound},
	{"file not found", domain.ErrorKindFileNotFound},
	{"no such file", domain.ErrorKindFileNotFound},
	{"qbxml version", domain.ErrorKindProtocolRejected},
	{"version is not supported", domain.ErrorKindProtocolRejected},
	{"parsing the provided xml", domain.ErrorKindProtocolRejected},
	{"could not start", domain.ErrorKindConnectionFailed},
	{"connection", domain.ErrorKindConnectionFailed},
	{"session", domain.ErrorKindConnectionFailed},
}

// Classify maps err onto the closed kind set. Shapes that match nothing
// classify as Unknown. A nil error classifies as Unknown too.
func Classify(err error) Classification {
	if err == nil {
		return build(domain.ErrorKindUnknown, "unknown error", nil)
	}

	hints := errors.GetAllHints(err)

	if errors.Is(err, ErrConnectionFailed) {
		c := build(domain.ErrorKindConnectionFailed, err.Error(), hints)
		if cause := kindOf(err); cause != domain.ErrorKindUnknown && cause != domain.ErrorKindConnectionFailed {
			c.Remedies = merge(c.Remedies, Remedies(cause))
		}
		return c
	}

	return build(kindOf(err), err.Error(), hints)
}

// IsProtocolRejected reports whether the host refused the request itself
// rather than the connection.
func IsProtocolRejected(err error) bool {
	return err != nil && kindOf(err) == domain.ErrorKindProtocolRejected
}

func kindOf(err error) domain.ErrorKind {
	if errors.Is(err, domain.ErrInvalidDateRange) {
		return domain.ErrorKindInvalidDateRange
	}
	for _, m := range markers {
		if errors.Is(err, m.marker) {
			return m.kind
		}
	}

	var perr *qbxml.ParseError
	if errors.As(err, &perr) {
		return domain.ErrorKindParseFailed
	}
	var serr *qbxml.StatusError
	if errors.As(err, &serr) {
		return domain.ErrorKindProtocolRejected
	}

	var c coded
	if errors.As(err, &c) {
		if kind, ok := hresults[c.HResult()]; ok {
			return kind
		}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p.needle) {
			return p.kind
		}
	}
	return domain.ErrorKindUnknown
}

func build(kind domain.ErrorKind, msg string, hints []string) Classification {
	return Classification{
		Kind:     kind,
		Message:  msg,
		Remedies: merge(hints, Remedies(kind)),
	}
}

func merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, l := range lists {
		for _, r := range l {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
