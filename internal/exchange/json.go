package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

func writeJSON(w io.Writer, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

func writeYAML(w io.Writer, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tasks); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeJSON reads a JSON array of task objects. A payload that is not an
// array fails as a whole; individual objects that do not decode are returned
// as records carrying an error.
func DecodeJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, todoerrors.Wrap(todoerrors.ErrCodeInvalidPayload, "failed to read import payload", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, todoerrors.Wrap(todoerrors.ErrCodeInvalidPayload, "import payload is not a JSON array of tasks", err).
			WithSuggestion("Export with 'todo export --format json' to see the expected shape")
	}

	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		rec := Record{Position: i + 1}
		if err := json.Unmarshal(item, &rec.Task); err != nil {
			rec.Err = recordError(rec.Position, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordError(pos int, err error) error {
	if errors.Is(err, todoerrors.Validation) {
		return fmt.Errorf("record %d: %w", pos, err)
	}
	return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload, "record %d: %v", pos, err)
}
