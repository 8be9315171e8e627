package api

import "time"

type Report struct {
	Key           string `json:"key"`
	DisplayName   string `json:"display_name"`
	ReportType    string `json:"report_type"`
	Category      string `json:"category"`
	UsesDateRange bool   `json:"uses_date_range"`
}

type ErrorDetail struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Remedies []string `json:"remedies"`
}

type RunResult struct {
	RunID       string       `json:"run_id"`
	ReportKey   string       `json:"report_key"`
	RowCount    int          `json:"row_count"`
	Changed     bool         `json:"changed"`
	Hash        string       `json:"hash,omitempty"`
	Files       []string     `json:"files"`
	CompletedAt time.Time    `json:"completed_at"`
	Error       *ErrorDetail `json:"error,omitempty"`
}

type Run struct {
	RunID        string    `json:"run_id"`
	ReportKey    string    `json:"report_key"`
	RowCount     int       `json:"row_count"`
	Changed      bool      `json:"changed"`
	Hash         *string   `json:"hash,omitempty"`
	Files        []string  `json:"files"`
	ErrorKind    *string   `json:"error_kind,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

type ScheduleStatus struct {
	State           string     `json:"state"`
	IntervalMinutes int        `json:"interval_minutes,omitempty"`
	Cycles          int64      `json:"cycles"`
	LastCycleAt     *time.Time `json:"last_cycle_at,omitempty"`
	LastReports     int        `json:"last_cycle_reports"`
	LastFailed      int        `json:"last_cycle_failed"`
	LastChanged     int        `json:"last_cycle_changed"`
}

type Baseline struct {
	ReportKey string    `json:"report_key"`
	Hash      string    `json:"hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Exchange struct {
	ReportKey string    `json:"report_key"`
	Version   string    `json:"version"`
	Request   string    `json:"request"`
	Response  *string   `json:"response,omitempty"`
	Error     *string   `json:"error,omitempty"`
	LoggedAt  time.Time `json:"logged_at"`
}

type StartScheduleRequest struct {
	IntervalMinutes int `json:"interval_minutes"`
}
