package qbxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

const (
	statusNoMatch       = "1"
	statusSeverityError = "Error"
)

// ParseError reports a response that could not be decoded. Malformed is set
// when the report fragment is truncated or structurally invalid.
type ParseError struct {
	Malformed bool
	Err       error
}

func (e *ParseError) Error() string {
	if e.Malformed {
		return fmt.Sprintf("malformed report response: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse report response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusError is a response the host answered with an error severity.
type StatusError struct {
	Code     string
	Severity string
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("host rejected request: status %s (%s): %s", e.Code, e.Severity, e.Message)
}

// Parse decodes a raw host response into a tabular record. A well-formed
// response without a report fragment yields an empty record.
func Parse(raw string) (domain.ResponseRecord, error) {
	var doc qbxmlRs
	dec := xml.NewDecoder(strings.NewReader(sanitize(raw)))
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&doc); err != nil {
		return domain.ResponseRecord{}, &ParseError{Malformed: true, Err: err}
	}
	if err := ensureEOF(dec); err != nil {
		return domain.ResponseRecord{}, &ParseError{Malformed: true, Err: err}
	}

	if len(doc.Msgs.Responses) == 0 {
		return domain.NewResponseRecord(nil, nil), nil
	}
	rs := doc.Msgs.Responses[0]

	if rs.StatusSeverity == statusSeverityError && rs.StatusCode != statusNoMatch {
		return domain.ResponseRecord{}, &StatusError{
			Code:     rs.StatusCode,
			Severity: rs.StatusSeverity,
			Message:  normalize(rs.StatusMessage),
		}
	}
	if rs.Report == nil {
		return domain.NewResponseRecord(nil, nil), nil
	}

	return tabulate(rs.Report), nil
}

func ensureEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("unexpected trailing content")
			}
		case xml.StartElement:
			return fmt.Errorf("unexpected trailing element <%s>", t.Name.Local)
		}
	}
}

func tabulate(ret *reportRet) domain.ResponseRecord {
	columns, positions := columnLayout(ret.Columns)

	width := len(columns)
	if width == 0 {
		width = widestRow(ret)
	}

	rows := make([][]string, 0)
	if ret.Data != nil {
		for _, r := range ret.Data.Rows {
			rows = append(rows, rowValues(r, width, positions))
		}
	}

	record := domain.NewResponseRecord(columns, rows)
	record.Title = normalize(ret.Title)
	record.Basis = normalize(ret.Basis)
	return record
}

// columnLayout orders column descriptions by colID and maps each colID to
// its position. Multi-line titles are joined with a space.
func columnLayout(descs []colDesc) ([]string, map[string]int) {
	sorted := make([]colDesc, len(descs))
	copy(sorted, descs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return colOrder(sorted[i].ColID) < colOrder(sorted[j].ColID)
	})

	columns := make([]string, 0, len(sorted))
	positions := make(map[string]int, len(sorted))
	for _, d := range sorted {
		titles := make([]colTitle, len(d.Titles))
		copy(titles, d.Titles)
		sort.SliceStable(titles, func(i, j int) bool {
			return colOrder(titles[i].TitleRow) < colOrder(titles[j].TitleRow)
		})

		parts := make([]string, 0, len(titles))
		for _, t := range titles {
			if v := normalize(t.Value); v != "" {
				parts = append(parts, v)
			}
		}

		positions[strings.TrimSpace(d.ColID)] = len(columns)
		columns = append(columns, strings.Join(parts, " "))
	}
	return columns, positions
}

func widestRow(ret *reportRet) int {
	if ret.Data == nil {
		return 0
	}
	widest := 0
	for _, r := range ret.Data.Rows {
		if (r.XMLName.Local == "TextRow" || r.Label != nil) && widest == 0 {
			widest = 1
		}
		for _, c := range r.Cols {
			if n := colOrder(c.ColID); n != maxOrder && n > widest {
				widest = n
			}
		}
	}
	return widest
}

// rowValues aligns a row to width. Missing cells stay empty and cells whose
// colID falls outside the layout are dropped.
func rowValues(r reportRow, width int, positions map[string]int) []string {
	values := make([]string, width)
	if width == 0 {
		return values
	}

	if r.XMLName.Local == "TextRow" {
		values[0] = normalize(r.Value)
		return values
	}

	for _, c := range r.Cols {
		idx, ok := position(c.ColID, positions)
		if !ok || idx >= width {
			continue
		}
		values[idx] = normalize(c.Value)
	}

	if r.Label != nil && values[0] == "" {
		values[0] = normalize(r.Label.Value)
	}
	return values
}

func position(colID string, positions map[string]int) (int, bool) {
	id := strings.TrimSpace(colID)
	if len(positions) > 0 {
		idx, ok := positions[id]
		return idx, ok
	}
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

const maxOrder = int(^uint(0) >> 1)

func colOrder(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return maxOrder
	}
	return n
}

var (
	charRef          = regexp.MustCompile(`&#(x[0-9A-Fa-f]+|[0-9]+);`)
	declaredEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*encoding\s*=\s*["']([^"']+)["']`)
)

// sanitize removes what the XML decoder rejects outright: invalid UTF-8 in
// a UTF-8 document, raw C0 control bytes and character references outside
// the XML character range.
func sanitize(raw string) string {
	if declaresUTF8(raw) {
		raw = strings.ToValidUTF8(raw, "\uFFFD")
	}

	// C0 bytes never occur inside a multi-byte UTF-8 sequence or in the
	// single-byte charsets the host emits.
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			continue
		}
		b.WriteByte(c)
	}

	return charRef.ReplaceAllStringFunc(b.String(), func(ref string) string {
		digits, base := ref[2:len(ref)-1], 10
		if digits[0] == 'x' {
			digits, base = digits[1:], 16
		}
		n, err := strconv.ParseUint(digits, base, 32)
		if err != nil || !isXMLChar(rune(n)) {
			return ""
		}
		return ref
	})
}

func declaresUTF8(raw string) bool {
	m := declaredEncoding.FindStringSubmatch(raw)
	if m == nil {
		return true
	}
	enc, err := htmlindex.Get(m[1])
	if err != nil {
		return false
	}
	name, err := htmlindex.Name(enc)
	return err == nil && name == "utf-8"
}

func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// normalize trims surrounding whitespace and drops control characters so
// cell values are stable across encodings.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

type qbxmlRs struct {
	XMLName xml.Name `xml:"QBXML"`
	Msgs    msgsRs   `xml:"QBXMLMsgsRs"`
}

type msgsRs struct {
	Responses []reportRs `xml:",any"`
}

type reportRs struct {
	XMLName        xml.Name
	StatusCode     string     `xml:"statusCode,attr"`
	StatusSeverity string     `xml:"statusSeverity,attr"`
	StatusMessage  string     `xml:"statusMessage,attr"`
	Report         *reportRet `xml:"ReportRet"`
}

type reportRet struct {
	Title   string      `xml:"ReportTitle"`
	Basis   string      `xml:"ReportBasis"`
	Columns []colDesc   `xml:"ColDesc"`
	Data    *reportData `xml:"ReportData"`
}

type colDesc struct {
	ColID  string     `xml:"colID,attr"`
	Titles []colTitle `xml:"ColTitle"`
}

type colTitle struct {
	TitleRow string `xml:"titleRow,attr"`
	Value    string `xml:"value,attr"`
}

type reportData struct {
	Rows []reportRow `xml:",any"`
}

type reportRow struct {
	XMLName xml.Name
	Value   string    `xml:"value,attr"`
	Label   *rowData  `xml:"RowData"`
	Cols    []colData `xml:"ColData"`
}

type rowData struct {
	Value string `xml:"value,attr"`
}

type colData struct {
	ColID string `xml:"colID,attr"`
	Value string `xml:"value,attr"`
}
