// Package metadata reads per-node attribute tables.
//
// A metadata file is a delimited table whose first column identifies tree
// nodes. Whatever that column is called in the file, it is exposed as
// [IDColumn]. Values are kept as strings; interpreting them is up to the
// caller.
package metadata

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
)

// IDColumn is the name given to the first column of every table.
const IDColumn = "Node_id"

// Options controls parsing.
type Options struct {
	// Separator splits fields. A space means "any run of whitespace".
	// Zero defaults to a tab.
	Separator rune
	// SkipRows is the number of leading lines dropped before the header.
	SkipRows int
}

// Table is a metadata table keyed by node id.
type Table struct {
	Columns []string
	Rows    map[string]map[string]string
	ids     []string
}

// ReadFile opens path and reads it with [Read].
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a table from r.
func Read(r io.Reader, opts Options) (*Table, error) {
	if opts.Separator == 0 {
		opts.Separator = '\t'
	}
	if opts.SkipRows < 0 {
		return nil, cverrors.New(cverrors.ErrCodeInvalidInput, "skip rows %d is negative", opts.SkipRows)
	}

	br := bufio.NewReader(r)
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("skip row %d: %w", i, err)
		}
	}

	var records [][]string
	var err error
	if opts.Separator == ' ' {
		records, err = readFields(br)
	} else {
		cr := csv.NewReader(br)
		cr.Comma = opts.Separator
		records, err = cr.ReadAll()
		if err != nil {
			err = cverrors.Wrap(cverrors.ErrCodeInvalidInput, err, "malformed metadata")
		}
	}
	if err != nil {
		return nil, err
	}
	return build(records)
}

// readFields splits each non-blank line on runs of whitespace.
func readFields(r io.Reader) ([][]string, error) {
	var records [][]string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	width := -1
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if width >= 0 && len(fields) != width {
			return nil, cverrors.New(cverrors.ErrCodeInvalidInput,
				"metadata line %d has %d fields, want %d", line, len(fields), width)
		}
		width = len(fields)
		records = append(records, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan metadata: %w", err)
	}
	return records, nil
}

func build(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, cverrors.New(cverrors.ErrCodeInvalidInput, "metadata has no header")
	}
	cols := slices.Clone(records[0])
	cols[0] = IDColumn

	t := &Table{Columns: cols, Rows: make(map[string]map[string]string, len(records)-1)}
	for _, rec := range records[1:] {
		id := rec[0]
		if _, dup := t.Rows[id]; dup {
			return nil, cverrors.New(cverrors.ErrCodeInvalidInput, "duplicate node id %q", id)
		}
		row := make(map[string]string, len(cols))
		for i, c := range cols {
			row[c] = rec[i]
		}
		t.Rows[id] = row
		t.ids = append(t.ids, id)
	}
	return t, nil
}

// IDs returns the node ids in file order.
func (t *Table) IDs() []string { return t.ids }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.ids) }

// Get returns one cell.
func (t *Table) Get(id, column string) (string, bool) {
	row, ok := t.Rows[id]
	if !ok {
		return "", false
	}
	v, ok := row[column]
	return v, ok
}

// Values returns the distinct values of column in order of first
// appearance. It is typically used to assign one color per category.
func (t *Table) Values(column string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range t.ids {
		v, ok := t.Rows[id][column]
		if ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Select returns the ids whose column equals value, in file order.
func (t *Table) Select(column, value string) []string {
	var out []string
	for _, id := range t.ids {
		if t.Rows[id][column] == value {
			out = append(out, id)
		}
	}
	return out
}
