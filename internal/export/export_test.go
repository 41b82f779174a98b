package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/task"
)

func tasks() []task.Task {
	return []task.Task{
		{ID: 1, Title: "Buy milk", Category: task.CategoryErrand, DueDate: task.NewDate(2024, time.January, 1)},
		{ID: 2, Title: "Café run", Description: "with, commas", Category: task.CategoryShopping, Completed: true},
	}
}

func TestExportJSONMatchesStoredShape(t *testing.T) {
	b, err := Export(tasks(), "json")
	require.NoError(t, err)

	var back []task.Task
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tasks(), back)

	b, err = Export(nil, "JSON")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestExportCSV(t *testing.T) {
	b, err := Export(tasks(), "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Buy milk", "", "2024-01-01", "errand", "false"}, rows[1])
	assert.Equal(t, "with, commas", rows[2][2])
}

func TestExportPDF(t *testing.T) {
	b, err := Export(tasks(), "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	b, err = Export(nil, "pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteReportsWriterErrors(t *testing.T) {
	boom := errors.New("disk full")
	long := []task.Task{{ID: 1, Title: "big", Description: strings.Repeat("x", 8192)}}

	for _, format := range []string{FormatJSON, FormatCSV, FormatPDF} {
		err := Write(failingWriter{err: boom}, long, format)
		assert.ErrorIs(t, err, boom, format)
	}
	assert.ErrorIs(t, writeCSV(failingWriter{err: boom}, nil), boom)
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(tasks(), "xml")
	assert.ErrorContains(t, err, "unknown format")
}
