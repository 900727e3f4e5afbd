package subdiv

import "testing"

func TestBoundingRect(t *testing.T) {
	pts := []Point{Pt(1, 2), Pt(-3, 5), Pt(4, -1)}
	diff(t, Rect{-3, -1, 4, 5}, BoundingRect(pts))
	diff(t, Rect{}, BoundingRect(nil))
	diff(t, Rect{2, 2, 2, 2}, BoundingRect([]Point{Pt(2, 2)}))
}

func TestRectContains(t *testing.T) {
	r := NewRectFromPoints(Pt(10, 10), Pt(0, 0))
	diff(t, Rect{0, 0, 10, 10}, r)
	for _, pt := range []Point{Pt(0, 0), Pt(10, 5), Pt(3, 10)} {
		if !r.Contains(pt) {
			t.Errorf("expected %v to contain %v", r, pt)
		}
	}
	if r.Contains(Pt(10.5, 5)) {
		t.Errorf("expected %v to exclude (10.5, 5)", r)
	}
	if !r.Inflate(1, 0).Contains(Pt(10.5, 5)) {
		t.Errorf("expected inflated rectangle to contain (10.5, 5)")
	}
	if r.Inflate(1, 0).Contains(Pt(5, 10.5)) {
		t.Errorf("inflating horizontally should not grow the rectangle vertically")
	}
}
