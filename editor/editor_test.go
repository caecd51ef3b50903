package editor

import (
	"context"
	"errors"
	"math"
	"testing"

	"campus-walkways/db"
	"campus-walkways/model"
	"campus-walkways/utils"
)

func near(a, b model.Coordinate) bool {
	return utils.Distance(a, b) <= 1e-12
}

func straight(id string, pts ...model.Coordinate) model.Walkway {
	return model.Walkway{ID: id, Name: "主干道", Type: "path", Geometry: pts, Control: model.CloneCoords(pts)}
}

func TestCatmullRomInterpolatesControlPoints(t *testing.T) {
	a, bend, b := model.Pt(0, 0), model.Pt(5, 3), model.Pt(10, 0)
	for _, alpha := range []float64{0, 0.5, 1} {
		for _, samples := range []int{1, 2, 7, 16} {
			out := CatmullRom([]model.Coordinate{a, bend, b}, samples, alpha)
			if len(out) != 2*samples+1 {
				t.Fatalf("alpha=%v samples=%d: len = %d", alpha, samples, len(out))
			}
			if !near(out[0], a) || !near(out[len(out)-1], b) {
				t.Errorf("alpha=%v samples=%d: endpoints %v %v", alpha, samples, out[0], out[len(out)-1])
			}
			if !near(out[samples], bend) {
				t.Errorf("alpha=%v samples=%d: midpoint %v, want %v", alpha, samples, out[samples], bend)
			}
			for _, p := range out {
				if !p.Finite() {
					t.Fatalf("non-finite sample %v", p)
				}
			}
		}
	}
}

func TestCatmullRomSmooth(t *testing.T) {
	out := CatmullRom([]model.Coordinate{model.Pt(0, 0), model.Pt(5, 3), model.Pt(10, 0)}, 8, DefaultAlpha)
	// interior samples of a symmetric arch lie above the chord
	for i := 1; i < len(out)-1; i++ {
		if out[i].Lat <= 0 {
			t.Errorf("sample %d = %v below chord", i, out[i])
		}
	}
	if math.Abs(out[4].Lat-out[12].Lat) > 1e-9 {
		t.Errorf("symmetric arch not symmetric: %v vs %v", out[4], out[12])
	}
}

func TestCatmullRomDegenerate(t *testing.T) {
	two := []model.Coordinate{model.Pt(0, 0), model.Pt(1, 1)}
	if out := CatmullRom(two, 8, 0.5); len(out) != 2 {
		t.Errorf("two points should stay straight, got %v", out)
	}
	dup := []model.Coordinate{model.Pt(0, 0), model.Pt(0, 0), model.Pt(1, 1)}
	for _, p := range CatmullRom(dup, 4, 0.5) {
		if !p.Finite() {
			t.Fatalf("duplicate control points produced %v", p)
		}
	}
}

func TestBend(t *testing.T) {
	w := straight("w", model.Pt(0, 0), model.Pt(0.001, 0))
	bent, err := Bend(w, 0, model.Pt(0.0005, 0.0002), 16, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !bent.Curved {
		t.Error("bent walkway should be curved")
	}
	if len(bent.Control) != 3 || bent.Control[1] != model.Pt(0.0005, 0.0002) {
		t.Errorf("control = %v", bent.Control)
	}
	if len(bent.Geometry) != 33 {
		t.Errorf("geometry has %d points, want 33", len(bent.Geometry))
	}
	if bent.Geometry[0] != w.Geometry[0] || bent.Geometry[32] != w.Geometry[1] {
		t.Error("bend moved the walkway endpoints")
	}
	if bent.ID != w.ID || bent.Name != w.Name {
		t.Error("bend should keep identity and metadata")
	}
	if len(w.Control) != 2 || w.Curved {
		t.Error("bend mutated its input")
	}

	// bending an already curved walkway adds another control point and
	// only replaces the samples between Control[1] and Control[2]
	again, err := Bend(bent, 1, model.Pt(0.0008, 0.0001), 4, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Control) != 4 || len(again.Geometry) != 16+9 {
		t.Errorf("control=%d geometry=%d", len(again.Control), len(again.Geometry))
	}
	for i := 0; i <= 16; i++ {
		if again.Geometry[i] != bent.Geometry[i] {
			t.Fatalf("sample %d of the first half moved: %v -> %v", i, bent.Geometry[i], again.Geometry[i])
		}
	}
	if again.Geometry[20] != model.Pt(0.0008, 0.0001) || again.Geometry[24] != w.Geometry[1] {
		t.Errorf("second bend not anchored: %v", again.Geometry[16:])
	}
}

func TestBendKeepsOtherSegments(t *testing.T) {
	w := straight("w", model.Pt(0, 0), model.Pt(10, 0), model.Pt(10, 10))
	bent, err := Bend(w, 0, model.Pt(5, 2), 8, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Coordinate{model.Pt(0, 0), model.Pt(5, 2), model.Pt(10, 0), model.Pt(10, 10)}
	if len(bent.Control) != len(want) {
		t.Fatalf("control = %v", bent.Control)
	}
	for i := range want {
		if bent.Control[i] != want[i] {
			t.Fatalf("control = %v, want %v", bent.Control, want)
		}
	}
	// 17 samples for the bent segment, then the untouched segment's far end
	if len(bent.Geometry) != 18 {
		t.Fatalf("geometry has %d points, want 18", len(bent.Geometry))
	}
	tail := bent.Geometry[16:]
	if tail[0] != model.Pt(10, 0) || tail[1] != model.Pt(10, 10) {
		t.Errorf("segment 1 reshaped: %v", tail)
	}

	// bending the second segment leaves the first curve alone
	both, err := Bend(bent, 2, model.Pt(12, 5), 8, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 16; i++ {
		if both.Geometry[i] != bent.Geometry[i] {
			t.Fatalf("sample %d of segment 0 moved", i)
		}
	}
	for _, p := range both.Geometry[16:] {
		if p.Lng < 10-1e-12 {
			t.Errorf("segment 1 curve crossed back over x=10: %v", p)
		}
	}

	// uncurving restores the control polyline exactly
	if flat := Uncurve(both); len(flat.Geometry) != 5 || flat.Geometry[4] != model.Pt(10, 10) {
		t.Errorf("uncurve = %v", flat.Geometry)
	}
}

func TestBendErrors(t *testing.T) {
	w := straight("w", model.Pt(0, 0), model.Pt(1, 0))
	if _, err := Bend(w, 1, model.Pt(0.5, 0.5), 8, 0.5); !errors.Is(err, ErrSegmentIndex) {
		t.Errorf("segment out of range: %v", err)
	}
	if _, err := Bend(w, -1, model.Pt(0.5, 0.5), 8, 0.5); !errors.Is(err, ErrSegmentIndex) {
		t.Errorf("negative segment: %v", err)
	}
	if _, err := Bend(w, 0, model.Pt(1, 0), 8, 0.5); !errors.Is(err, ErrInvalidBend) {
		t.Errorf("bend at endpoint: %v", err)
	}
	if _, err := Bend(w, 0, model.Pt(math.NaN(), 0), 8, 0.5); !errors.Is(err, ErrInvalidBend) {
		t.Errorf("nan bend: %v", err)
	}
}

func TestUncurveAndToggle(t *testing.T) {
	w := straight("w", model.Pt(0, 0), model.Pt(1, 0))
	bent, _ := Bend(w, 0, model.Pt(0.5, 0.5), 8, 0.5)

	flat := Uncurve(bent)
	if flat.Curved || len(flat.Geometry) != 3 {
		t.Errorf("uncurve = %+v", flat)
	}
	for i := range flat.Geometry {
		if flat.Geometry[i] != flat.Control[i] {
			t.Fatal("uncurved geometry must equal control")
		}
	}

	curved := SetCurved(flat, true, 8, 0.5)
	if !curved.Curved || len(curved.Geometry) != 17 {
		t.Errorf("curve toggle = %d points", len(curved.Geometry))
	}
	if off := SetCurved(curved, false, 8, 0.5); off.Curved || len(off.Geometry) != 3 {
		t.Errorf("toggle off = %+v", off)
	}
	if r := Rename(w, "新名字"); r.Name != "新名字" || w.Name != "主干道" {
		t.Error("rename should return a renamed copy")
	}
}

func TestMoveControlPoint(t *testing.T) {
	w := straight("w", model.Pt(0, 0), model.Pt(1, 0))
	bent, _ := Bend(w, 0, model.Pt(0.5, 0.5), 8, 0.5)
	moved, err := MoveControlPoint(bent, 1, model.Pt(0.5, -0.5), 8, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if moved.Geometry[8] != model.Pt(0.5, -0.5) {
		t.Errorf("curve does not pass through moved point: %v", moved.Geometry[8])
	}
	if len(moved.Geometry) != len(bent.Geometry) {
		t.Errorf("move changed the sample count: %d -> %d", len(bent.Geometry), len(moved.Geometry))
	}

	// moving the bend of segment 0 does not touch the straight segment after it
	long := straight("long", model.Pt(0, 0), model.Pt(1, 0), model.Pt(1, 1))
	long, _ = Bend(long, 0, model.Pt(0.5, 0.2), 8, 0.5)
	shifted, err := MoveControlPoint(long, 1, model.Pt(0.4, 0.3), 8, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(shifted.Geometry); n != 18 || shifted.Geometry[16] != model.Pt(1, 0) || shifted.Geometry[17] != model.Pt(1, 1) {
		t.Errorf("tail after move = %v", shifted.Geometry[16:])
	}
	if _, err := MoveControlPoint(bent, 0, model.Pt(0, 1), 8, 0.5); !errors.Is(err, ErrVertexIndex) {
		t.Errorf("moving an endpoint: %v", err)
	}
}

func TestSplit(t *testing.T) {
	group := "g1"
	w := straight("w", model.Pt(0, 0), model.Pt(10, 0))
	w.Group = group

	first, second, ok := Split(w, model.Pt(4, 0.3))
	if !ok {
		t.Fatal("expected split")
	}
	if first.ID == w.ID || second.ID == w.ID || first.ID == second.ID {
		t.Error("split parts need fresh identifiers")
	}
	if len(first.Geometry) != 2 || first.Geometry[1] != model.Pt(4, 0) {
		t.Errorf("first = %v", first.Geometry)
	}
	if len(second.Geometry) != 2 || second.Geometry[0] != model.Pt(4, 0) || second.Geometry[1] != model.Pt(10, 0) {
		t.Errorf("second = %v", second.Geometry)
	}
	if first.Name != w.Name || second.Type != w.Type || first.Group != group {
		t.Error("split parts should inherit name, type and group")
	}

	if _, _, ok := Split(w, model.Pt(0, 0)); ok {
		t.Error("split at the start point should be a no-op")
	}
	if _, _, ok := Split(w, model.Pt(12, 1)); ok {
		t.Error("split projected onto the end point should be a no-op")
	}
}

func TestSplitAtInteriorVertex(t *testing.T) {
	w := straight("w", model.Pt(0, 0), model.Pt(5, 0), model.Pt(5, 5))
	first, second, ok := Split(w, model.Pt(5, 0))
	if !ok {
		t.Fatal("expected split at interior vertex")
	}
	if len(first.Geometry) != 2 || len(second.Geometry) != 2 {
		t.Errorf("first=%v second=%v", first.Geometry, second.Geometry)
	}
}

func TestSplitCurved(t *testing.T) {
	w := straight("w", model.Pt(0, 0), model.Pt(1, 0))
	bent, _ := Bend(w, 0, model.Pt(0.5, 0.5), 8, 0.5)
	first, second, ok := Split(bent, model.Pt(0.5, 0.5))
	if !ok {
		t.Fatal("expected split")
	}
	if first.Curved || second.Curved {
		t.Error("split parts of a curve become straight polylines")
	}
	if len(first.Geometry)+len(second.Geometry) != len(bent.Geometry)+1 {
		t.Errorf("split lost vertices: %d + %d vs %d", len(first.Geometry), len(second.Geometry), len(bent.Geometry))
	}
}

func TestDecompose(t *testing.T) {
	line := []model.Coordinate{model.Pt(0, 0), model.Pt(1, 0), model.Pt(1, 1), model.Pt(2, 1)}
	parts := Decompose(line, "环路", "path")
	if len(parts) != 3 {
		t.Fatalf("got %d parts", len(parts))
	}
	for i, p := range parts {
		if p.Group == "" || p.Group != parts[0].Group {
			t.Error("parts must share a group marker")
		}
		if p.SegmentIndex == nil || *p.SegmentIndex != i {
			t.Errorf("part %d segment index = %v", i, p.SegmentIndex)
		}
		if len(p.Geometry) != 2 || p.Geometry[0] != line[i] || p.Geometry[1] != line[i+1] {
			t.Errorf("part %d geometry = %v", i, p.Geometry)
		}
		if err := p.Validate(); err != nil {
			t.Error(err)
		}
	}

	single := Decompose(line[:2], "", "")
	if len(single) != 1 || single[0].Group != "" {
		t.Errorf("two-point line = %+v", single)
	}
}

func TestSelection(t *testing.T) {
	ws := []model.Walkway{
		straight("forty", model.Pt(0, 5), model.Pt(10, 5)),
		straight("sixty", model.Pt(-2, 2), model.Pt(3, 2)),
		straight("inside", model.Pt(1, 1), model.Pt(3, 9)),
		straight("outside", model.Pt(20, 20), model.Pt(30, 30)),
	}
	bounds := model.Bounds{Min: model.Pt(4, 10), Max: model.Pt(0, 0)}

	got := SelectByRectangle(ws, bounds)
	want := map[string]bool{"sixty": true, "inside": true}
	if len(got) != len(want) {
		t.Fatalf("rectangle selection = %v", got)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected selection %s", id)
		}
	}

	poly := bounds.Normalize().Ring()
	got = SelectByPolygon(ws, poly[:4])
	if len(got) != 1 || got[0] != "inside" {
		t.Errorf("polygon selection = %v, want only fully contained", got)
	}
}

func TestDragPreviewCommitCancel(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	w, err := store.SaveWalkway(ctx, straight("", model.Pt(0, 0), model.Pt(1, 0)))
	if err != nil {
		t.Fatal(err)
	}

	drag := NewBendDrag(w, 0, 8, 0.5)
	for _, p := range []model.Coordinate{model.Pt(0.5, 0.1), model.Pt(0.5, 0.3), model.Pt(0.6, 0.4)} {
		preview, err := drag.Preview(p)
		if err != nil {
			t.Fatal(err)
		}
		if len(preview.Control) != 3 {
			t.Fatalf("each preview must start from the pre-drag copy, control = %v", preview.Control)
		}
		stored, _ := store.GetWalkway(ctx, w.ID)
		if stored.Curved {
			t.Fatal("preview leaked into the store")
		}
	}
	if orig := drag.Original(); len(orig.Control) != 2 {
		t.Error("original copy was modified")
	}

	saved, err := drag.Commit(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if !saved.Curved || saved.Control[1] != model.Pt(0.6, 0.4) {
		t.Errorf("committed = %+v", saved)
	}
	if _, err := drag.Preview(model.Pt(0, 1)); !errors.Is(err, ErrDragClosed) {
		t.Errorf("preview after commit: %v", err)
	}

	failed := NewBendDrag(w, 0, 8, 0.5)
	if _, err := failed.Preview(model.Pt(0.5, 0.2)); err != nil {
		t.Fatal(err)
	}
	if _, err := failed.Preview(model.Pt(1, 0)); !errors.Is(err, ErrInvalidBend) {
		t.Fatalf("preview on the endpoint: %v", err)
	}
	if _, err := failed.Commit(ctx, store); !errors.Is(err, ErrNothingToSave) {
		t.Errorf("commit after a rejected preview: %v", err)
	}

	cancelled := NewBendDrag(w, 0, 8, 0.5)
	if _, err := cancelled.Commit(ctx, store); !errors.Is(err, ErrNothingToSave) {
		t.Errorf("commit without preview: %v", err)
	}
	cancelled.Preview(model.Pt(0.5, -0.5))
	cancelled.Cancel()
	if _, err := cancelled.Commit(ctx, store); !errors.Is(err, ErrDragClosed) {
		t.Errorf("commit after cancel: %v", err)
	}
	stored, _ := store.GetWalkway(ctx, w.ID)
	if stored.Control[1] != model.Pt(0.6, 0.4) {
		t.Error("cancelled drag changed the stored record")
	}
}

// failingStore 模拟持久化失败
type failingStore struct{ err error }

func (f failingStore) SaveWalkway(context.Context, model.Walkway) (model.Walkway, error) {
	return model.Walkway{}, f.err
}

func (f failingStore) DeleteWalkway(context.Context, string) error { return f.err }

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	w := straight("w", model.Pt(0, 0), model.Pt(1, 0))

	if _, err := CommitSplit(ctx, failingStore{boom}, w, model.Pt(0.5, 0)); !errors.Is(err, boom) {
		t.Errorf("split: %v", err)
	}
	if n, err := DeleteSelection(ctx, failingStore{boom}, []string{"a", "b"}); n != 0 || !errors.Is(err, boom) {
		t.Errorf("delete selection: %d %v", n, err)
	}
	drag := NewBendDrag(w, 0, 4, 0.5)
	drag.Preview(model.Pt(0.5, 0.5))
	if _, err := drag.Commit(ctx, failingStore{boom}); !errors.Is(err, boom) {
		t.Errorf("drag commit: %v", err)
	}
}

func TestCommitSplitWithStore(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	w, _ := store.SaveWalkway(ctx, straight("", model.Pt(0, 0), model.Pt(1, 0)))

	parts, err := CommitSplit(ctx, store, w, model.Pt(0.25, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %v", parts)
	}
	all, _ := store.ListWalkways(ctx)
	if len(all) != 2 {
		t.Errorf("store holds %d walkways, want 2", len(all))
	}
	if _, err := store.GetWalkway(ctx, w.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("original still present: %v", err)
	}

	n, err := DeleteSelection(ctx, store, SelectByRectangle(all, model.Bounds{Min: model.Pt(-1, -1), Max: model.Pt(2, 1)}))
	if err != nil || n != 2 {
		t.Errorf("delete selection = %d, %v", n, err)
	}
}
