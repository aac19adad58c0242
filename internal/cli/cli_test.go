package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/layout"
	"github.com/matzehuels/cladeview/pkg/sector"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// Preorder ids: g=0 c=1 a=2 b=3 f=4 d=5 e=6.
const testNewick = "((a:1,b:2)c:1,(d:1,e:1)f:1)g;"

type testEnv struct {
	cli *CLI
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	captureSpinner(t)
	return &testEnv{cli: New(io.Discard, LogInfo), dir: dir}
}

// path returns a file path inside the test directory.
func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *testEnv) write(t *testing.T, name, body string) string {
	t.Helper()
	p := e.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

// run executes the root command and returns what it wrote to stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := e.cli.RootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func decodeLayout(t *testing.T, data []byte) layout.Result {
	t.Helper()
	var r layout.Result
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	return r
}

func maxCoord(r layout.Result) float64 {
	m := 0.0
	for _, p := range r.Positions {
		m = math.Max(m, math.Max(p.X, p.Y))
	}
	return m
}

func TestLayoutCommand(t *testing.T) {
	e := newTestEnv(t)
	input := e.write(t, "tree.nwk", testNewick)

	e.mustRun(t, "", "layout", input,
		"--export", e.path("tree.json"),
		"--newick", e.path("named.nwk"))

	data, err := os.ReadFile(e.path("tree.layout.json"))
	if err != nil {
		t.Fatalf("default output not written: %v", err)
	}
	r := decodeLayout(t, data)
	if len(r.Nodes) != 7 {
		t.Errorf("len(Nodes) = %d, want 7", len(r.Nodes))
	}
	if r.Scale <= 0 {
		t.Errorf("Scale = %v, want > 0", r.Scale)
	}
	for name, p := range r.Positions {
		if p.X < 0 || p.X > 500 || p.Y < 0 || p.Y > 500 {
			t.Errorf("%s at (%v, %v) outside the 500x500 viewport", name, p.X, p.Y)
		}
	}

	var doc tree.Document
	data, _ = os.ReadFile(e.path("tree.json"))
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(doc.Nodes) != 7 || doc.Nodes[0].Name != "g" || doc.Nodes[0].LeafCount != 4 {
		t.Errorf("export root = %+v (of %d nodes), want g with 4 leaves", doc.Nodes[0], len(doc.Nodes))
	}

	named, _ := os.ReadFile(e.path("named.nwk"))
	if !strings.HasSuffix(string(named), ";\n") || !strings.Contains(string(named), ")c:") {
		t.Errorf("named newick = %q", named)
	}
}

func TestLayoutCommandURL(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tree.nwk" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, testNewick)
	}))
	defer srv.Close()

	e.mustRun(t, "", "layout", srv.URL+"/tree.nwk", "-o", e.path("remote.json"))
	data, err := os.ReadFile(e.path("remote.json"))
	if err != nil {
		t.Fatal(err)
	}
	if r := decodeLayout(t, data); len(r.Nodes) != 7 {
		t.Errorf("len(Nodes) = %d, want 7", len(r.Nodes))
	}

	_, err = e.run(t, "", "layout", srv.URL+"/missing.nwk", "-o", e.path("missing.json"))
	if code := cverrors.GetCode(err); code != cverrors.ErrCodeNotFound {
		t.Errorf("missing url code = %v, want %v", code, cverrors.ErrCodeNotFound)
	}
}

func TestLayoutCommandStdin(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun(t, testNewick, "layout", "-", "--no-cache")
	if r := decodeLayout(t, []byte(out)); len(r.Nodes) != 7 {
		t.Errorf("len(Nodes) = %d, want 7", len(r.Nodes))
	}
}

func TestLayoutCommandConfig(t *testing.T) {
	e := newTestEnv(t)
	e.write(t, "config/cladeview/config.toml", "[layout]\nwidth = 100.0\nheight = 100.0\n")

	small := decodeLayout(t, []byte(e.mustRun(t, testNewick, "layout", "-")))
	if m := maxCoord(small); m > 100 {
		t.Errorf("max coordinate = %v, want <= 100 from config", m)
	}

	big := decodeLayout(t, []byte(e.mustRun(t, testNewick, "layout", "-", "--width", "1000", "--height", "1000")))
	if m := maxCoord(big); m <= 100 {
		t.Errorf("max coordinate = %v, want flags to override config", m)
	}

	explicit := e.write(t, "other.toml", "[layout]\nwidth = 10.0\nheight = 10.0\n")
	tiny := decodeLayout(t, []byte(e.mustRun(t, testNewick, "--config", explicit, "layout", "-")))
	if m := maxCoord(tiny); m > 10 {
		t.Errorf("max coordinate = %v, want <= 10 from --config", m)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	e := newTestEnv(t)
	bad := e.write(t, "bad.nwk", "((a,b);")

	tests := []struct {
		name string
		args []string
		code cverrors.Code
	}{
		{"malformed newick", []string{"layout", bad}, cverrors.ErrCodeInvalidTree},
		{"negative width", []string{"layout", bad, "--width=-5"}, cverrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, "", tt.args...)
			if got := cverrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err %v)", got, tt.code, err)
			}
		})
	}

	if _, err := e.run(t, "", "layout", e.path("missing.nwk")); err == nil {
		t.Error("missing input should fail")
	}

	e.write(t, "config/cladeview/config.toml", "[layout]\nbogus = 1\n")
	if _, err := e.run(t, testNewick, "layout", "-"); err == nil {
		t.Error("unknown config key should fail")
	}
}

func decodeBuffer(t *testing.T, data []byte) sector.Buffer {
	t.Helper()
	var buf sector.Buffer
	if err := json.Unmarshal(data, &buf); err != nil {
		t.Fatalf("decode buffer: %v", err)
	}
	return buf
}

func TestSectorCommand(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun(t, "", "sector", "--radius", "10",
		"--angle-a", "0.7853981633974483", "--angle-b", "5.497787143782138", "-c", "00ff00")
	buf := decodeBuffer(t, []byte(out))
	if len(buf) != sector.BufferLen {
		t.Fatalf("len = %d, want %d", len(buf), sector.BufferLen)
	}
	first := buf.Vertex(0)
	if first.Pos.X != 0 || first.Pos.Y != 0 || first.Color.G != 1 || first.Color.R != 0 {
		t.Errorf("first vertex = %+v, want green apex at the origin", first)
	}

	// Without --color the configured default (red) is used.
	buf = decodeBuffer(t, []byte(e.mustRun(t, "", "sector", "--angle-a", "1", "--angle-b", "2")))
	if c := buf.Vertex(1).Color; c.R != 1 || c.G != 0 || c.B != 0 {
		t.Errorf("default color = %+v, want red", c)
	}

	single := e.mustRun(t, "", "sector", "--angle-a", "1", "--angle-b", "2", "--float32")
	var f []float32
	if err := json.Unmarshal([]byte(single), &f); err != nil || len(f) != sector.BufferLen {
		t.Errorf("float32 output: len %d, err %v", len(f), err)
	}
}

func TestSectorCommandErrors(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		code cverrors.Code
	}{
		{"half circle", []string{"--angle-a", "0", "--angle-b", "3.141592653589793"}, cverrors.ErrCodeSectorTooWide},
		{"bad color", []string{"--angle-a", "1", "--angle-b", "2", "-c", "red"}, cverrors.ErrCodeInvalidColor},
		{"negative radius", []string{"--angle-a", "1", "--angle-b", "2", "--radius=-1"}, cverrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, "", append([]string{"sector"}, tt.args...)...)
			if got := cverrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestRecolorCommand(t *testing.T) {
	e := newTestEnv(t)
	src := e.path("sector.json")
	e.mustRun(t, "", "sector", "--center-x", "3", "--radius", "5",
		"--angle-a", "0.2", "--angle-b", "1.1", "-o", src)

	dst := e.path("out/recolored.json")
	e.mustRun(t, "", "recolor", src, "-c", "0000ff", "-o", dst)

	before, _ := os.ReadFile(src)
	after, _ := os.ReadFile(dst)
	a, b := decodeBuffer(t, before), decodeBuffer(t, after)
	if len(a) != len(b) {
		t.Fatalf("len = %d, want %d", len(b), len(a))
	}
	for i := 0; i < b.Vertices(); i++ {
		va, vb := a.Vertex(i), b.Vertex(i)
		if va.Pos != vb.Pos {
			t.Fatalf("vertex %d moved from %v to %v", i, va.Pos, vb.Pos)
		}
		if vb.Color.B != 1 || vb.Color.R != 0 || vb.Color.G != 0 {
			t.Fatalf("vertex %d color = %+v, want blue", i, vb.Color)
		}
	}

	// Concatenated buffers from stdin.
	both := append(append(sector.Buffer(nil), a...), a...)
	data, _ := json.Marshal(both)
	out := e.mustRun(t, string(data), "recolor", "-", "-c", "ffffff")
	if got := decodeBuffer(t, []byte(out)); got.Sectors() != 2 {
		t.Errorf("Sectors() = %d, want 2", got.Sectors())
	}
}

func TestRecolorCommandErrors(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name  string
		input string
		args  []string
		code  cverrors.Code
	}{
		{"short buffer", "[1,2,3]", nil, cverrors.ErrCodeMalformedBuffer},
		{"not json", "nope", nil, cverrors.ErrCodeMalformedBuffer},
		{"bad color", "[]", []string{"-c", "12345"}, cverrors.ErrCodeInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, tt.input, append([]string{"recolor", "-"}, tt.args...)...)
			if got := cverrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestTopologyCommand(t *testing.T) {
	e := newTestEnv(t)
	input := e.write(t, "tree.nwk", testNewick)

	var doc topologyDocument
	out := e.mustRun(t, "", "topology", input, "--from", "a", "--to", "d")
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode topology: %v", err)
	}
	wantNames := []string{"g", "c", "a", "b", "f", "d", "e"}
	if strings.Join(doc.Names, ",") != strings.Join(wantNames, ",") {
		t.Errorf("Names = %v, want %v", doc.Names, wantNames)
	}
	if len(doc.Edges) != 6 {
		t.Errorf("len(Edges) = %d, want 6", len(doc.Edges))
	}
	wantPath := []int{2, 1, 0, 4, 5}
	if len(doc.Path) != len(wantPath) {
		t.Fatalf("Path = %v, want %v", doc.Path, wantPath)
	}
	for i := range wantPath {
		if doc.Path[i] != wantPath[i] {
			t.Errorf("Path = %v, want %v", doc.Path, wantPath)
			break
		}
	}

	dot := e.mustRun(t, "", "topology", input, "-f", "dot", "--highlight", "a,b", "--show-ids")
	if !strings.HasPrefix(dot, "digraph") {
		t.Errorf("dot output = %q, want a digraph", dot)
	}
}

func TestTopologyCommandErrors(t *testing.T) {
	e := newTestEnv(t)
	input := e.write(t, "tree.nwk", testNewick)

	tests := []struct {
		name string
		args []string
		code cverrors.Code
	}{
		{"bad format", []string{"-f", "png"}, cverrors.ErrCodeInvalidInput},
		{"from without to", []string{"--from", "a"}, cverrors.ErrCodeInvalidInput},
		{"unknown endpoint", []string{"--from", "a", "--to", "zz"}, cverrors.ErrCodeNotFound},
		{"unknown highlight", []string{"-f", "dot", "--highlight", "zz"}, cverrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, "", append([]string{"topology", input}, tt.args...)...)
			if got := cverrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err %v)", got, tt.code, err)
			}
		})
	}
}

func isPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("%s is not a PNG", path)
	}
}

func TestPreviewCommand(t *testing.T) {
	e := newTestEnv(t)
	input := e.write(t, "tree.nwk", testNewick)

	e.mustRun(t, "", "preview", input, "--size", "64", "--clade", "c")
	isPNG(t, e.path("tree.png"))

	meta := e.write(t, "meta.tsv", "id\tgroup\nc\tx\nf\ty\na\tx\nmissing\tx\n")
	out := e.path("meta.png")
	e.mustRun(t, "", "preview", input, "--size", "64", "-o", out,
		"--metadata", meta, "--column", "group", "--value", "x")
	isPNG(t, out)
}

func TestPreviewCommandErrors(t *testing.T) {
	e := newTestEnv(t)
	input := e.write(t, "tree.nwk", testNewick)

	tests := []struct {
		name string
		args []string
		code cverrors.Code
	}{
		{"unknown clade", []string{"--clade", "zz"}, cverrors.ErrCodeNotFound},
		{"tip clade", []string{"--clade", "a"}, cverrors.ErrCodeInvalidInput},
		{"metadata without column", []string{"--metadata", "meta.tsv"}, cverrors.ErrCodeInvalidInput},
		{"long separator", []string{"--sep", "ab"}, cverrors.ErrCodeInvalidInput},
		{"bad size", []string{"--size", "0"}, cverrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"preview", input, "-o", e.path("x.png")}, tt.args...)
			_, err := e.run(t, "", args...)
			if got := cverrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestCacheCommands(t *testing.T) {
	e := newTestEnv(t)
	want := filepath.Join(e.dir, "cache", appName)

	if got := strings.TrimSpace(e.mustRun(t, "", "cache", "path")); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	e.mustRun(t, "", "cache", "clear")

	e.mustRun(t, testNewick, "layout", "-")
	entries, err := os.ReadDir(want)
	if err != nil || len(entries) == 0 {
		t.Fatalf("layout should populate the cache (entries %d, err %v)", len(entries), err)
	}

	e.mustRun(t, "", "cache", "clear")
	entries, _ = os.ReadDir(want)
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	e := newTestEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		if out := e.mustRun(t, "", "completion", shell); !strings.Contains(out, appName) {
			t.Errorf("%s completion does not mention %s", shell, appName)
		}
	}
	if _, err := e.run(t, "", "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b,,c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := splitList(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input, suffix, want string
	}{
		{"tree.nwk", ".png", "tree.png"},
		{"dir/tree.newick", ".layout.json", "dir/tree.layout.json"},
		{"tree", ".png", "tree.png"},
		{stdinPath, ".png", ""},
		{"https://example.org/data/tree.nwk", ".png", "tree.png"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.input, tt.suffix); got != tt.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.input, tt.suffix, got, tt.want)
		}
	}
}
