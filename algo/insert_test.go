package algo

import (
	"math"
	"math/rand"
	"testing"
	"testing/quick"

	"campus-walkways/model"
)

func TestInsertPointSplitsNearestEdge(t *testing.T) {
	g := BuildGraph(crossing(), BuildOptions{})
	nodesBefore, edgesBefore := len(g.Nodes), len(g.Edges)

	res := InsertPoint(g, model.Pt(5, 0.0005), 1)
	if res == nil {
		t.Fatal("expected the point to snap")
	}
	if !res.Split {
		t.Fatal("expected the vertical edge to be split")
	}
	if res.Snapped != model.Pt(5, 0.0005) {
		t.Errorf("snapped = %v", res.Snapped)
	}
	if len(g.Nodes) != nodesBefore+1 || len(g.Edges) != edgesBefore+1 {
		t.Errorf("nodes %d->%d edges %d->%d", nodesBefore, len(g.Nodes), edgesBefore, len(g.Edges))
	}

	center := node(t, g, model.Pt(5, 0))
	top := node(t, g, model.Pt(5, 5))
	total := 0.0
	for _, e := range g.Edges {
		if e.Walkway != "v" {
			continue
		}
		if (e.A == center && e.B == top) || (e.A == top && e.B == center) {
			t.Error("original edge still present after split")
		}
		if e.A == res.Node || e.B == res.Node {
			total += e.Weight
		}
	}
	if math.Abs(total-5) > tolerance {
		t.Errorf("split weights sum to %v, want 5", total)
	}
	if len(g.GetNeighbors(res.Node)) != 2 {
		t.Errorf("inserted node degree = %d, want 2", len(g.GetNeighbors(res.Node)))
	}
}

func TestInsertPointReusesEndpoint(t *testing.T) {
	g := BuildGraph(crossing(), BuildOptions{})
	edges := len(g.Edges)

	res := InsertPoint(g, model.Pt(-1, 0.5), 2)
	if res == nil {
		t.Fatal("expected snap to the west endpoint")
	}
	if res.Split || res.Node != node(t, g, model.Pt(0, 0)) {
		t.Errorf("result = %+v", res)
	}
	if len(g.Edges) != edges {
		t.Error("reusing an endpoint must not change the graph")
	}
}

func TestInsertPointTooFar(t *testing.T) {
	g := BuildGraph(crossing(), BuildOptions{})
	if res := InsertPoint(g, model.Pt(20, 20), 1); res != nil {
		t.Errorf("expected nil for distant point, got %+v", res)
	}
	if res := InsertPoint(NewGraph(), model.Pt(0, 0), 100); res != nil {
		t.Error("empty graph should yield nil")
	}
	if res := InsertPoint(g, model.Pt(math.NaN(), 0), 100); res != nil {
		t.Error("non-finite coordinate should yield nil")
	}
}

func TestInsertPointTwiceSameLocation(t *testing.T) {
	g := BuildGraph(crossing(), BuildOptions{})
	first := InsertPoint(g, model.Pt(2, 0.1), 1)
	second := InsertPoint(g, model.Pt(2, 0.1), 1)
	if first == nil || second == nil {
		t.Fatal("expected both inserts to snap")
	}
	if first.Node != second.Node {
		t.Errorf("second insert created node %d, want reuse of %d", second.Node, first.Node)
	}
}

func TestInsertThenRouteBound(t *testing.T) {
	property := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		ws := randomWalkways(r, 3+r.Intn(3))
		base := BuildGraph(ws, BuildOptions{})
		g := BuildGraph(ws, BuildOptions{})

		p := model.Pt(r.Float64(), r.Float64())
		ei, _, _, _ := g.NearestEdge(p)
		if ei < 0 {
			return true
		}
		edge := g.Edges[ei]
		ins := InsertPoint(g, p, math.Inf(1))
		if ins == nil {
			return false
		}
		target := r.Intn(len(base.Nodes))
		for _, end := range []struct {
			node  int
			coord model.Coordinate
		}{{edge.A, edge.From}, {edge.B, edge.To}} {
			via := ShortestPath(base, end.node, target)
			if via == nil {
				continue
			}
			got := ShortestPath(g, ins.Node, target)
			if got == nil {
				return false
			}
			bound := math.Hypot(ins.Snapped.Lng-end.coord.Lng, ins.Snapped.Lat-end.coord.Lat) + via.Distance
			if got.Distance > bound+tolerance {
				return false
			}
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}
