package export

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

func sampleRecord() domain.ResponseRecord {
	record := domain.NewResponseRecord(
		[]string{"Customer", "Amount"},
		[][]string{
			{"Acme", "120.00"},
			{"Globex", "35.50"},
		},
	)
	record.Title = "Open Invoices"
	return record
}

func TestNewFileExporter(t *testing.T) {
	_, err := NewFileExporter("", FormatCSV)
	assert.Error(t, err)

	_, err = NewFileExporter(t.TempDir(), Format("pdf"))
	assert.Error(t, err)

	e, err := NewFileExporter(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, e.format)
}

func TestFileExporter_CSV(t *testing.T) {
	dir := t.TempDir()
	e, err := NewFileExporter(dir, FormatCSV)
	require.NoError(t, err)

	files, err := e.ExportTabular(context.Background(), sampleRecord(), "open_invoices")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "open_invoices.csv")}, files)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Customer", "Amount"},
		{"Acme", "120.00"},
		{"Globex", "35.50"},
	}, rows)
}

func TestFileExporter_XLSX(t *testing.T) {
	dir := t.TempDir()
	e, err := NewFileExporter(dir, FormatXLSX)
	require.NoError(t, err)

	files, err := e.ExportTabular(context.Background(), sampleRecord(), "open_invoices")
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Open Invoices"}, rows[0])
	assert.Equal(t, []string{"Customer", "Amount"}, rows[2])
	assert.Equal(t, []string{"Globex", "35.50"}, rows[4])
}

func TestFileExporter_InvalidName(t *testing.T) {
	e, err := NewFileExporter(t.TempDir(), FormatCSV)
	require.NoError(t, err)

	_, err = e.ExportTabular(context.Background(), sampleRecord(), "../escape")
	assert.Error(t, err)
}

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(params.Body)
	args := m.Called(aws.ToString(params.Bucket), aws.ToString(params.Key), string(body))
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestS3Mirror(t *testing.T) {
	dir := t.TempDir()
	local, err := NewFileExporter(dir, FormatCSV)
	require.NoError(t, err)

	t.Run("uploads every exported file", func(t *testing.T) {
		putter := new(mockPutter)
		putter.On("PutObject", "ledger", "exports/open_invoices.csv", mock.Anything).
			Return(&s3.PutObjectOutput{}, nil)

		files, err := NewS3Mirror(local, putter, "ledger", "exports").
			ExportTabular(context.Background(), sampleRecord(), "open_invoices")
		require.NoError(t, err)
		assert.Len(t, files, 1)
		putter.AssertExpectations(t)
	})

	t.Run("upload failure keeps local export", func(t *testing.T) {
		putter := new(mockPutter)
		putter.On("PutObject", "ledger", "open_invoices.csv", mock.Anything).
			Return(nil, errors.New("access denied"))

		files, err := NewS3Mirror(local, putter, "ledger", "").
			ExportTabular(context.Background(), sampleRecord(), "open_invoices")
		require.NoError(t, err)
		assert.FileExists(t, files[0])
		putter.AssertExpectations(t)
	})
}
