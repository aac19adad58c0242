package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		opts    Options
		wantCol []string
		wantIDs []string
		check   func(t *testing.T, tb *Table)
	}{
		{
			name:    "tab default",
			in:      "id\tphylum\tlength\na\tFirmicutes\t1\nb\tProteobacteria\t2\n",
			wantCol: []string{IDColumn, "phylum", "length"},
			wantIDs: []string{"a", "b"},
			check: func(t *testing.T, tb *Table) {
				if v, _ := tb.Get("b", "phylum"); v != "Proteobacteria" {
					t.Errorf("Get(b, phylum) = %q, want Proteobacteria", v)
				}
			},
		},
		{
			name:    "comma with skipped rows",
			in:      "# exported\n# v2\nnode,kind\n0001,x\n0002,y\n",
			opts:    Options{Separator: ',', SkipRows: 2},
			wantCol: []string{IDColumn, "kind"},
			wantIDs: []string{"0001", "0002"},
			check: func(t *testing.T, tb *Table) {
				if v, ok := tb.Get("0001", IDColumn); !ok || v != "0001" {
					t.Errorf("ids must stay strings, got %q", v)
				}
			},
		},
		{
			name:    "whitespace runs",
			in:      "name   group\n\n a    1\nb \t 2  \n",
			opts:    Options{Separator: ' '},
			wantCol: []string{IDColumn, "group"},
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "quoted csv field",
			in:      "id,label\nx,\"hello, world\"\n",
			opts:    Options{Separator: ','},
			wantCol: []string{IDColumn, "label"},
			wantIDs: []string{"x"},
			check: func(t *testing.T, tb *Table) {
				if v, _ := tb.Get("x", "label"); v != "hello, world" {
					t.Errorf("label = %q", v)
				}
			},
		},
		{
			name:    "header only",
			in:      "id\tx\n",
			wantCol: []string{IDColumn, "x"},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb, err := Read(strings.NewReader(tt.in), tt.opts)
			if err != nil {
				t.Fatalf("Read error: %v", err)
			}
			if strings.Join(tb.Columns, "|") != strings.Join(tt.wantCol, "|") {
				t.Errorf("Columns = %v, want %v", tb.Columns, tt.wantCol)
			}
			if strings.Join(tb.IDs(), "|") != strings.Join(tt.wantIDs, "|") {
				t.Errorf("IDs() = %v, want %v", tb.IDs(), tt.wantIDs)
			}
			if tb.Len() != len(tt.wantIDs) {
				t.Errorf("Len() = %d, want %d", tb.Len(), len(tt.wantIDs))
			}
			if tt.check != nil {
				tt.check(t, tb)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts Options
	}{
		{"empty", "", Options{}},
		{"ragged csv", "id,a\nx,1,2\n", Options{Separator: ','}},
		{"ragged whitespace", "id a\nx 1 2\n", Options{Separator: ' '}},
		{"duplicate id", "id\ta\nx\t1\nx\t2\n", Options{}},
		{"negative skip", "id\n", Options{SkipRows: -1}},
		{"everything skipped", "id\ta\n", Options{SkipRows: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), tt.opts)
			if !cverrors.Is(err, cverrors.ErrCodeInvalidInput) {
				t.Errorf("Read error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestValuesAndSelect(t *testing.T) {
	in := "id\tphylum\na\tF\nb\tP\nc\tF\nd\tB\n"
	tb, err := Read(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got := strings.Join(tb.Values("phylum"), ","); got != "F,P,B" {
		t.Errorf("Values = %s, want F,P,B", got)
	}
	if got := strings.Join(tb.Select("phylum", "F"), ","); got != "a,c" {
		t.Errorf("Select = %s, want a,c", got)
	}
	if _, ok := tb.Get("zz", "phylum"); ok {
		t.Error("Get on a missing id should fail")
	}
	if _, ok := tb.Get("a", "nope"); ok {
		t.Error("Get on a missing column should fail")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.tsv")
	if err := os.WriteFile(path, []byte("id\tx\nn1\t7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tb, err := ReadFile(path, Options{})
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if v, _ := tb.Get("n1", "x"); v != "7" {
		t.Errorf("Get(n1, x) = %q, want 7", v)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing"), Options{}); err == nil {
		t.Error("ReadFile on a missing file should fail")
	}
}
