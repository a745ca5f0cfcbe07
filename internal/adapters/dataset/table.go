package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// row is one CSV record addressed by column name.
type row struct {
	cols   map[string]int
	record []string
}

func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r row) required(name string) (string, error) {
	v := r.get(name)
	if v == "" {
		return "", fmt.Errorf("%s is empty", name)
	}
	return v, nil
}

func (r row) date(name string) (time.Time, error) {
	v, err := r.required(name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %q is not YYYY-MM-DD", name, v)
	}
	return t, nil
}

// number parses an optional numeric column; empty means zero.
func (r row) number(name string) (float64, error) {
	v := r.get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, v)
	}
	return f, nil
}

func (r row) integer(name string) (int, error) {
	v := r.get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, v)
	}
	return n, nil
}

func (r row) boolean(name string) (bool, error) {
	v := strings.ToLower(r.get(name))
	switch v {
	case "", "false", "0", "no", "f":
		return false, nil
	case "true", "1", "yes", "t":
		return true, nil
	}
	return false, fmt.Errorf("%s: %q is not a boolean", name, v)
}

// readTable streams a CSV body with a header row through fn. Header names
// are matched case-insensitively; any required column that is absent fails
// the whole file. The first failing row aborts the read.
func readTable(r io.Reader, file string, required []string, fn func(row) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w: empty file", file, ErrMalformed)
		}
		return fmt.Errorf("%s: %w: header: %v", file, ErrMalformed, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%s: %w: %s", file, ErrMissingColumn, name)
		}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w: %v", file, ErrMalformed, err)
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		if err := fn(row{cols: cols, record: record}); err != nil {
			return fmt.Errorf("%s:%d: %w: %v", file, line, ErrMalformed, err)
		}
	}
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
