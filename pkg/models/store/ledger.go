package store

import "time"

type Baseline struct {
	ReportKey string
	Hash      string
	UpdatedAt time.Time
}

type Run struct {
	RunID        string
	ReportKey    string
	RowCount     int
	Changed      bool
	Hash         *string
	Files        []string
	ErrorKind    *string
	ErrorMessage *string
	CompletedAt  time.Time
}

type Exchange struct {
	ReportKey string
	Version   string
	Request   string
	Response  *string
	Error     *string
	LoggedAt  time.Time
}
