package domain

// ResponseRecord is the tabular result of one report request. Every row has
// exactly len(Columns) values unless the host omitted column descriptions.
type ResponseRecord struct {
	Title    string
	Basis    string
	Columns  []string
	Rows     [][]string
	RowCount int
}

func NewResponseRecord(columns []string, rows [][]string) ResponseRecord {
	if rows == nil {
		rows = [][]string{}
	}
	if columns == nil {
		columns = []string{}
	}
	return ResponseRecord{
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
	}
}

// ContentHash is the hex-encoded digest of a record's rows.
type ContentHash string
