package layout

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/tree"
)

const sampleNewick = "(((a:1,e:2)f:1,b:2)g:1,(c:1,d:3)h:2)i:1;"

func mustParse(t *testing.T, s string) *tree.Tree {
	t.Helper()
	tr, err := tree.ParseNewick(s)
	if err != nil {
		t.Fatalf("ParseNewick(%q): %v", s, err)
	}
	tree.NameUnlabeled(tr)
	return tr
}

func TestCoordsReference(t *testing.T) {
	tr := mustParse(t, sampleNewick)

	scale, err := Coords(tr, 500, 500, DefaultOptions())
	if err != nil {
		t.Fatalf("Coords error: %v", err)
	}
	if math.Abs(scale-74.609165340334656) > 1e-5 {
		t.Errorf("scale = %v, want 74.609165340334656", scale)
	}

	want := []struct {
		name string
		x, y float64
	}{
		{"a", -10.222747306219219, 195.06163867407446},
		{"e", 118.00044943013512, 262.22444928198297},
		{"f", 36.73032180166217, 137.07942714215795},
		{"b", 184.76890317443747, 23.95196521134946},
		{"g", 40.6350638142365, 62.57251106991248},
		{"c", -77.36538561589865, -199.6519382120705},
		{"d", -290.23109682556253, -205.35762294073118},
		{"h", -81.27012762847295, -125.14502213982503},
		{"i", 0, 0},
	}

	for i, n := range tr.Postorder() {
		w := want[i]
		if n.Name != w.name {
			t.Fatalf("postorder[%d] = %q, want %q", i, n.Name, w.name)
		}
		if math.Abs(n.X-w.x) > 1e-5 || math.Abs(n.Y-w.y) > 1e-5 {
			t.Errorf("%s = (%v, %v), want (%v, %v)", n.Name, n.X, n.Y, w.x, w.y)
		}
	}
}

func TestRescaleToFitReferenceScale(t *testing.T) {
	tr := mustParse(t, sampleNewick)
	scale, err := RescaleToFit(tr, 500, 500, Options{})
	if err != nil {
		t.Fatalf("RescaleToFit error: %v", err)
	}
	if math.Abs(scale-74.609165340334656) > 1e-5 {
		t.Errorf("scale = %v, want 74.609165340334656", scale)
	}

	minX, minY, maxX, maxY := Bounds(tr)
	if minX < 0 || minY < 0 || maxX > 500 || maxY > 500 {
		t.Errorf("bounds (%v,%v)-(%v,%v) exceed the 500x500 viewport", minX, minY, maxX, maxY)
	}
	if got := math.Max((maxX-minX)/500, (maxY-minY)/500); math.Abs(got-DefaultMargin) > 1e-9 {
		t.Errorf("fill ratio = %v, want %v", got, DefaultMargin)
	}
	if cx := (minX + maxX) / 2; math.Abs(cx-250) > 1e-9 {
		t.Errorf("center x = %v, want 250", cx)
	}
}

func TestComputeRootedExample(t *testing.T) {
	tr := mustParse(t, "((a:1,b:2)c:1)d:0;")
	if err := Compute(tr, Options{}); err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	d, a, b := tr.Find("d"), tr.Find("a"), tr.Find("b")
	if d.X != 0 || d.Y != 0 {
		t.Errorf("d = (%v, %v), want origin", d.X, d.Y)
	}
	if a.Angle == b.Angle {
		t.Errorf("a and b share angle %v", a.Angle)
	}
	if got := math.Abs(a.Angle - b.Angle); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("|a.Angle - b.Angle| = %v, want π", got)
	}
	if got := b.Radius; got != 3 {
		t.Errorf("b.Radius = %v, want 3", got)
	}
	if got := tr.Find("c").LeafCount; got != 2 {
		t.Errorf("c.LeafCount = %d, want 2", got)
	}
}

func TestComputeParentDistance(t *testing.T) {
	tr := mustParse(t, sampleNewick)
	if err := Compute(tr, Options{Direction: 1.3}); err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	for _, n := range tr.Preorder() {
		p := n.Parent()
		if p == nil {
			continue
		}
		got := math.Hypot(n.X-p.X, n.Y-p.Y)
		if math.Abs(got-n.BranchLength()) > 1e-12 {
			t.Errorf("|%s - %s| = %v, want %v", n.Name, p.Name, got, n.BranchLength())
		}
		if n.Angle < 0 || n.Angle >= 2*math.Pi {
			t.Errorf("%s.Angle = %v, want [0, 2π)", n.Name, n.Angle)
		}
	}
}

func TestLeafWedgesCoverCircle(t *testing.T) {
	tr := mustParse(t, sampleNewick)
	if err := Compute(tr, Options{}); err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	leaves := tr.Leaves()
	wedge := 2 * math.Pi / float64(len(leaves))
	total := 0.0
	for i := range leaves {
		next := leaves[(i+1)%len(leaves)]
		d := math.Mod(next.Angle-leaves[i].Angle+4*math.Pi, 2*math.Pi)
		if math.Abs(d-wedge) > 1e-9 {
			t.Errorf("gap %s -> %s = %v, want %v", leaves[i].Name, next.Name, d, wedge)
		}
		total += d
	}
	if math.Abs(total-2*math.Pi) > 1e-9 {
		t.Errorf("wedges sum to %v, want 2π", total)
	}
}

func TestZeroLengthBranchesCoincide(t *testing.T) {
	tr := mustParse(t, "((a:0,b:1)c:0,d:1)r;")
	if err := Compute(tr, Options{}); err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	r, c, a := tr.Root, tr.Find("c"), tr.Find("a")
	if c.X != r.X || c.Y != r.Y || a.X != r.X || a.Y != r.Y {
		t.Errorf("zero-length nodes should coincide with the root: a=(%v,%v) c=(%v,%v)", a.X, a.Y, c.X, c.Y)
	}
}

func TestRescaleDegenerateAxis(t *testing.T) {
	// With a single rotation the only edge points straight up, so the
	// horizontal extent is zero and only the height constrains the scale.
	tr := mustParse(t, "(a:1)r;")
	scale, err := RescaleToFit(tr, 100, 100, Options{Rotations: 1})
	if err != nil {
		t.Fatalf("RescaleToFit error: %v", err)
	}
	if math.Abs(scale-95) > 1e-9 {
		t.Errorf("scale = %v, want 95", scale)
	}
	a := tr.Find("a")
	if math.Abs(a.X-50) > 1e-9 || math.Abs(a.Y-97.5) > 1e-9 {
		t.Errorf("a = (%v, %v), want (50, 97.5)", a.X, a.Y)
	}

	scale, err = RescaleToFit(tr, 100, 100, DefaultOptions())
	if err != nil {
		t.Fatalf("RescaleToFit error: %v", err)
	}
	if want := 95 * math.Sqrt2; math.Abs(scale-want) > 1e-9 {
		t.Errorf("scale = %v, want %v", scale, want)
	}
}

func TestRescaleErrors(t *testing.T) {
	tests := []struct {
		name   string
		newick string
		w, h   float64
		want   cverrors.Code
	}{
		{"single node", "a;", 100, 100, cverrors.ErrCodeEmptyLayout},
		{"no extent", "(a:0,b:0)r;", 100, 100, cverrors.ErrCodeEmptyLayout},
		{"zero width", sampleNewick, 0, 100, cverrors.ErrCodeInvalidInput},
		{"negative height", sampleNewick, 100, -1, cverrors.ErrCodeInvalidInput},
		{"nan width", sampleNewick, math.NaN(), 100, cverrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RescaleToFit(mustParse(t, tt.newick), tt.w, tt.h, DefaultOptions())
			if got := cverrors.GetCode(err); got != tt.want {
				t.Errorf("code = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}

	if _, err := RescaleToFit(mustParse(t, "a;"), 10, 10, Options{}); !errors.Is(err, ErrEmptyLayout) {
		t.Errorf("error %v is not ErrEmptyLayout", err)
	}
}

func TestComputeErrors(t *testing.T) {
	if err := Compute(nil, Options{}); !errors.Is(err, ErrEmptyLayout) {
		t.Errorf("Compute(nil) = %v, want ErrEmptyLayout", err)
	}

	root := tree.NewNode("r", -1)
	bad := tree.NewNode("x", 1)
	bad.SetLength(-2)
	root.AddChild(bad)
	if err := Compute(tree.New(root), Options{}); !cverrors.Is(err, cverrors.ErrCodeInvalidTree) {
		t.Errorf("negative length error = %v, want INVALID_TREE", err)
	}
}

func TestExportApply(t *testing.T) {
	tr := mustParse(t, sampleNewick)
	scale, err := Coords(tr, 500, 500, DefaultOptions())
	if err != nil {
		t.Fatalf("Coords error: %v", err)
	}
	res := Export(tr, scale)
	if len(res.Nodes) != 9 || len(res.Positions) != 9 {
		t.Fatalf("Export has %d nodes / %d positions, want 9", len(res.Nodes), len(res.Positions))
	}
	if res.Nodes[8].Name != "i" || res.Nodes[8].Parent != "" {
		t.Errorf("last node = %+v, want root i", res.Nodes[8])
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	fresh := mustParse(t, sampleNewick)
	if err := back.Apply(fresh); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	for _, n := range fresh.Postorder() {
		orig := tr.Find(n.Name)
		if n.X != orig.X || n.Y != orig.Y || n.Angle != orig.Angle || n.LeafCount != orig.LeafCount {
			t.Errorf("%s after Apply = (%v,%v,%v,%d), want (%v,%v,%v,%d)",
				n.Name, n.X, n.Y, n.Angle, n.LeafCount, orig.X, orig.Y, orig.Angle, orig.LeafCount)
		}
	}

	other := mustParse(t, "(zz:1,a:1)i;")
	if err := back.Apply(other); !cverrors.Is(err, cverrors.ErrCodeNotFound) {
		t.Errorf("Apply on a foreign tree = %v, want NOT_FOUND", err)
	}
}

func TestEdges(t *testing.T) {
	tr := mustParse(t, sampleNewick)
	if _, err := Coords(tr, 500, 500, DefaultOptions()); err != nil {
		t.Fatalf("Coords error: %v", err)
	}
	edges := Edges(tr)
	if len(edges) != 8 {
		t.Fatalf("len(Edges) = %d, want 8", len(edges))
	}
	if e := edges[0]; e.From != "i" || e.To != "g" || e.X1 != 0 || e.Y1 != 0 {
		t.Errorf("first edge = %+v, want i -> g from the origin", e)
	}
}

func TestApplyDuplicateNames(t *testing.T) {
	const nwk = "((x:1,x:2)p:1,(x:3,y:1)q:1)r;"
	tr := mustParse(t, nwk)
	scale, err := RescaleToFit(tr, 300, 300, DefaultOptions())
	if err != nil {
		t.Fatalf("RescaleToFit error: %v", err)
	}
	res := Export(tr, scale)

	fresh := mustParse(t, nwk)
	if err := res.Apply(fresh); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	want, got := tr.Postorder(), fresh.Postorder()
	for i := range want {
		if got[i].X != want[i].X || got[i].Y != want[i].Y {
			t.Errorf("node %d (%s) = (%v,%v), want (%v,%v)",
				i, got[i].Name, got[i].X, got[i].Y, want[i].X, want[i].Y)
		}
	}
}
