package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestWalkwayValidate(t *testing.T) {
	tests := []struct {
		name string
		w    Walkway
		ok   bool
	}{
		{"straight", Walkway{ID: "a", Geometry: []Coordinate{Pt(0, 0), Pt(1, 1)}}, true},
		{"single point", Walkway{ID: "b", Geometry: []Coordinate{Pt(0, 0)}}, false},
		{"nan", Walkway{ID: "c", Geometry: []Coordinate{Pt(0, 0), Pt(math.NaN(), 1)}}, false},
		{"inf", Walkway{ID: "d", Geometry: []Coordinate{Pt(math.Inf(1), 0), Pt(1, 1)}}, false},
		{"out of world", Walkway{ID: "e", Geometry: []Coordinate{Pt(0, 0), Pt(200, 1)}}, false},
		{"zero length", Walkway{ID: "f", Geometry: []Coordinate{Pt(3, 3), Pt(3, 3)}}, false},
		{"bad control", Walkway{ID: "g", Geometry: []Coordinate{Pt(0, 0), Pt(1, 1)}, Control: []Coordinate{Pt(0, 0)}}, false},
	}
	for _, tt := range tests {
		err := tt.w.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok {
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("%s: got %v, want *ValidationError", tt.name, err)
			} else if ve.ID != tt.w.ID {
				t.Errorf("%s: error id %q, want %q", tt.name, ve.ID, tt.w.ID)
			}
		}
	}
}

func TestWalkwayNormalize(t *testing.T) {
	w := Walkway{Geometry: []Coordinate{Pt(0, 0), Pt(1, 0)}}.Normalize()
	if len(w.Control) != 2 || w.Control[1] != Pt(1, 0) {
		t.Fatalf("control not defaulted: %v", w.Control)
	}
	w.Control[1] = Pt(5, 5)
	if w.Geometry[1] == Pt(5, 5) {
		t.Error("control shares backing array with geometry")
	}

	straight := Walkway{Geometry: []Coordinate{Pt(0, 0), Pt(0.5, 0.2), Pt(1, 0)}, Control: []Coordinate{Pt(0, 0), Pt(1, 0)}}.Normalize()
	if len(straight.Geometry) != 2 {
		t.Errorf("straight walkway geometry should equal control, got %v", straight.Geometry)
	}
}

func TestCoordinateJSON(t *testing.T) {
	data, err := json.Marshal(Pt(116.3, 39.9))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[116.3,39.9]" {
		t.Errorf("marshal = %s", data)
	}
	var c Coordinate
	if err := json.Unmarshal([]byte("[1.5, -2]"), &c); err != nil {
		t.Fatal(err)
	}
	if c != Pt(1.5, -2) {
		t.Errorf("unmarshal = %v", c)
	}
	if err := json.Unmarshal([]byte("[1]"), &c); err == nil {
		t.Error("expected error for short pair")
	}
}

func TestBoundsNormalize(t *testing.T) {
	b := Bounds{Min: Pt(4, 10), Max: Pt(0, 0)}.Normalize()
	if b.Min != Pt(0, 0) || b.Max != Pt(4, 10) {
		t.Errorf("normalize = %+v", b)
	}
	ring := b.Ring()
	if len(ring) != 5 || ring[0] != ring[4] {
		t.Errorf("ring not closed: %v", ring)
	}
}
