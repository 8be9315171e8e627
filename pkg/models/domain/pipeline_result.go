package domain

import "time"

// ErrorKind is the closed taxonomy of classified host and pipeline failures.
type ErrorKind string

const (
	ErrorKindSdkNotInstalled  ErrorKind = "SdkNotInstalled"
	ErrorKindSdkNotRegistered ErrorKind = "SdkNotRegistered"
	ErrorKindAccessDenied     ErrorKind = "AccessDenied"
	ErrorKindFileNotFound     ErrorKind = "FileNotFound"
	ErrorKindConnectionFailed ErrorKind = "ConnectionFailed"
	ErrorKindProtocolRejected ErrorKind = "ProtocolRejected"
	ErrorKindParseFailed      ErrorKind = "ParseFailed"
	ErrorKindInvalidDateRange ErrorKind = "InvalidDateRange"
	ErrorKindUnknown          ErrorKind = "Unknown"
)

// ErrorDescriptor is a classified failure with remedies meant to be shown verbatim.
type ErrorDescriptor struct {
	Kind     ErrorKind
	Message  string
	Remedies []string
}

// PipelineResult is the outcome of one pipeline run.
type PipelineResult struct {
	RunID       string
	ReportKey   string
	RowCount    int
	Changed     bool
	Hash        ContentHash
	Files       []string
	CompletedAt time.Time
	Error       *ErrorDescriptor
}

func (r PipelineResult) Failed() bool {
	return r.Error != nil
}
