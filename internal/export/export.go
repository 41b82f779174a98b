package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/task"
	"taskboard/internal/view"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Export encodes tasks, already filtered and sorted, in the given format.
func Export(tasks []task.Task, format string) ([]byte, error) {
	var b bytes.Buffer
	if err := Write(&b, tasks, format); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Write streams the encoded tasks to w.
func Write(w io.Writer, tasks []task.Task, format string) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		b, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case FormatCSV:
		return writeCSV(w, tasks)
	case FormatPDF:
		return writePDF(w, tasks)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

func writeCSV(out io.Writer, tasks []task.Task) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"id", "title", "description", "due_date", "category", "completed"}); err != nil {
		return err
	}
	for _, t := range tasks {
		err := w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			t.DueDate.String(),
			string(t.Category),
			strconv.FormatBool(t.Completed),
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writePDF(w io.Writer, tasks []task.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)

	s := view.Summary(tasks)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d done, %d pending, %d total", s.Done, s.Pending, s.Total()))
	pdf.Ln(10)

	if len(tasks) == 0 {
		pdf.Cell(40, 6, view.Placeholder)
	}
	for _, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s %s", mark, t.Title)), "0", "L", false)
		pdf.SetFont("Arial", "", 9)
		desc := t.Description
		if desc == "" {
			desc = view.NoDescription
		}
		line := fmt.Sprintf("%s | %s | %s", t.Category, view.FormatDue(t.DueDate), desc)
		pdf.MultiCell(0, 5, tr(line), "0", "L", false)
		pdf.Ln(2)
	}

	return pdf.Output(w)
}
