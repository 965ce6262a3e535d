package exchange

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// CSVHeader is the column order written by the CSV exporter.
var CSVHeader = []string{"uid", "title", "content", "tags", "due", "priority", "repeat", "branch", "done", "archived", "created_at"}

func writeCSV(w io.Writer, tasks []domain.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Format(time.RFC3339)
		}
		row := []string{
			t.UID,
			t.Title,
			t.Content,
			strings.Join(t.Tags, ","),
			t.Due.String(),
			t.Priority.String(),
			t.Repeat.String(),
			t.Branch,
			strconv.FormatBool(t.Done),
			strconv.FormatBool(t.Archived),
			created,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads a CSV file with a header row. Columns are matched by name
// and only "title" is required; id and parent columns are honoured when
// present. Rows with the wrong number of fields or unparseable values are
// returned as records carrying an error.
func DecodeCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, todoerrors.New(todoerrors.ErrCodeInvalidPayload, "CSV payload is empty")
		}
		return nil, todoerrors.Wrap(todoerrors.ErrCodeInvalidPayload, "failed to read CSV header", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	if _, ok := cols["title"]; !ok {
		return nil, todoerrors.New(todoerrors.ErrCodeInvalidPayload, "CSV header has no title column").
			WithSuggestion("Expected columns: " + strings.Join(CSVHeader, ","))
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, todoerrors.Wrap(todoerrors.ErrCodeInvalidPayload, "malformed CSV", err)
		}
		line, _ := cr.FieldPos(0)
		rec := Record{Position: line}
		if len(row) != len(header) {
			rec.Err = todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload,
				"line %d: expected %d fields, got %d", line, len(header), len(row))
		} else {
			rec.Task, rec.Err = parseRow(row, cols, line)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, cols map[string]int, line int) (domain.Task, error) {
	get := func(name string) string {
		if i, ok := cols[name]; ok {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	fail := func(field string, err error) (domain.Task, error) {
		return domain.Task{}, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload,
			"line %d: invalid %s: %v", line, field, err)
	}

	t := domain.Task{
		UID:     get("uid"),
		Title:   get("title"),
		Content: get("content"),
		Tags:    domain.SplitTags(get("tags")),
		Branch:  get("branch"),
	}

	var err error
	if s := get("due"); s != "" {
		if t.Due, err = domain.ParseDate(s); err != nil {
			return fail("due", err)
		}
	}
	if t.Priority, err = domain.ParsePriority(get("priority")); err != nil {
		return fail("priority", err)
	}
	if t.Repeat, err = domain.ParseRecurrence(get("repeat")); err != nil {
		return fail("repeat", err)
	}
	if t.Done, err = parseBool(get("done")); err != nil {
		return fail("done", err)
	}
	if t.Archived, err = parseBool(get("archived")); err != nil {
		return fail("archived", err)
	}
	if s := get("created_at"); s != "" {
		if t.CreatedAt, err = time.Parse(time.RFC3339, s); err != nil {
			return fail("created_at", err)
		}
	}
	if s := get("id"); s != "" {
		if t.ID, err = strconv.ParseUint(s, 10, 64); err != nil {
			return fail("id", err)
		}
	}
	if s := get("parent"); s != "" {
		if t.Parent, err = strconv.ParseUint(s, 10, 64); err != nil {
			return fail("parent", err)
		}
	}
	return t, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "no", "0", "n":
		return false, nil
	case "true", "yes", "1", "x", "y":
		return true, nil
	default:
		return false, errors.New("expected true or false, got " + strconv.Quote(s))
	}
}
