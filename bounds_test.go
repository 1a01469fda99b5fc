/*
Copyright © 2024 the Hydrodata authors.
This file is part of Hydrodata.

Hydrodata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Hydrodata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Hydrodata.  If not, see <http://www.gnu.org/licenses/>.
*/

package hydrodata

import (
	"errors"
	"testing"
	"time"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := testRegistry(t).Grid("conus1")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func staticEntry() *Entry {
	return &Entry{ID: "static_test", Period: Static}
}

func dailyEntry() *Entry {
	return &Entry{
		ID: "daily_test", Dataset: "test", Variable: "v",
		Period: Daily, Grouping: GroupingDailyFile,
		EntryStart: time.Date(2002, 10, 1, 0, 0, 0, 0, time.UTC),
		EntryEnd:   time.Date(2006, 9, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolveBoundsFullGrid(t *testing.T) {
	g := testGrid(t)
	b, err := resolveBounds(g, staticEntry(), &Options{})
	if err != nil {
		t.Fatal(err)
	}
	if b.XMin != 0 || b.YMin != 0 || b.XMax != g.NX() || b.YMax != g.NY() {
		t.Errorf("bounds = [%d, %d, %d, %d], want full grid", b.XMin, b.YMin, b.XMax, b.YMax)
	}
	if b.Steps != 1 || b.ZStart != 0 || b.ZStop != 1 {
		t.Errorf("steps = %d, z = [%d, %d)", b.Steps, b.ZStart, b.ZStop)
	}
}

func TestResolveBoundsPoint(t *testing.T) {
	g := testGrid(t)
	x, y := 10, 20
	b, err := resolveBounds(g, staticEntry(), &Options{X: &x, Y: &y})
	if err != nil {
		t.Fatal(err)
	}
	if b.Width() != 1 || b.Height() != 1 || b.XMin != 10 || b.YMin != 20 {
		t.Errorf("bounds = [%d, %d, %d, %d], want 1x1 at (10, 20)", b.XMin, b.YMin, b.XMax, b.YMax)
	}
	x = g.NX()
	if _, err := resolveBounds(g, staticEntry(), &Options{X: &x, Y: &y}); err == nil {
		t.Error("no error for point outside grid")
	}
}

func TestResolveBoundsDegenerate(t *testing.T) {
	g := testGrid(t)
	// min >= max must be rejected, not silently swapped.
	_, err := resolveBounds(g, staticEntry(), &Options{GridBounds: []int{200, 200, 100, 100}})
	var ie *InvalidRequestError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *InvalidRequestError", err)
	}
}

func TestResolveBoundsClip(t *testing.T) {
	g := testGrid(t)
	b, err := resolveBounds(g, staticEntry(), &Options{GridBounds: []int{-10, -10, 50, 40}})
	if err != nil {
		t.Fatal(err)
	}
	if b.XMin != 0 || b.YMin != 0 || b.XMax != 50 || b.YMax != 40 {
		t.Errorf("bounds = [%d, %d, %d, %d], want [0, 0, 50, 40]", b.XMin, b.YMin, b.XMax, b.YMax)
	}

	_, err = resolveBounds(g, staticEntry(), &Options{GridBounds: []int{-100, -100, -50, -50}})
	if err == nil {
		t.Error("no error for bounds entirely outside the grid")
	}
}

func TestResolveBoundsLatLon(t *testing.T) {
	g := testGrid(t)
	b, err := resolveBounds(g, staticEntry(), &Options{
		LatLonBounds: []float64{33.1, -99.4, 36.5, -97.2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.XMin >= b.XMax || b.YMin >= b.YMax {
		t.Fatalf("bounds = [%d, %d, %d, %d]", b.XMin, b.YMin, b.XMax, b.YMax)
	}
	// The resolved box must contain all four projected corners.
	r := testRegistry(t)
	for _, pt := range [][2]float64{{33.1, -99.4}, {33.1, -97.2}, {36.5, -99.4}, {36.5, -97.2}} {
		xy, err := r.LatLonToXY("conus1", pt[0], pt[1])
		if err != nil {
			t.Fatal(err)
		}
		if xy[0] < float64(b.XMin) || xy[0] > float64(b.XMax) ||
			xy[1] < float64(b.YMin) || xy[1] > float64(b.YMax) {
			t.Errorf("corner (%g, %g) -> (%g, %g) outside [%d, %d, %d, %d]",
				pt[0], pt[1], xy[0], xy[1], b.XMin, b.YMin, b.XMax, b.YMax)
		}
	}
}

func TestResolveBoundsVertical(t *testing.T) {
	g := testGrid(t)
	e := staticEntry()
	e.HasZ = true

	b, err := resolveBounds(g, e, &Options{})
	if err != nil {
		t.Fatal(err)
	}
	if b.ZStart != 0 || b.ZStop != g.NZ() {
		t.Errorf("default z = [%d, %d), want all %d levels", b.ZStart, b.ZStop, g.NZ())
	}

	b, err = resolveBounds(g, e, &Options{ZRange: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	if b.ZStart != 2 || b.ZStop != 3 || !b.zSingle {
		t.Errorf("single z = [%d, %d), zSingle = %v", b.ZStart, b.ZStop, b.zSingle)
	}

	b, err = resolveBounds(g, e, &Options{ZRange: []int{1, 4}})
	if err != nil {
		t.Fatal(err)
	}
	if b.ZStart != 1 || b.ZStop != 4 || b.zSingle {
		t.Errorf("z range = [%d, %d), zSingle = %v", b.ZStart, b.ZStop, b.zSingle)
	}

	if _, err := resolveBounds(g, e, &Options{ZRange: []int{0, g.NZ() + 1}}); err == nil {
		t.Error("no error for z range past the top level")
	}
	if _, err := resolveBounds(g, staticEntry(), &Options{ZRange: []int{0}}); err == nil {
		t.Error("no error for z filter on a variable without a z dimension")
	}
}

func TestResolveBoundsTemporal(t *testing.T) {
	g := testGrid(t)
	e := dailyEntry()

	_, err := resolveBounds(g, e, &Options{})
	var ie *InvalidRequestError
	if !errors.As(err, &ie) {
		t.Fatalf("missing start_time: error = %v, want *InvalidRequestError", err)
	}

	// Without end_time, one period is read.
	b, err := resolveBounds(g, e, &Options{StartTime: "2005-10-01"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Steps != 1 {
		t.Errorf("steps = %d, want 1", b.Steps)
	}

	b, err = resolveBounds(g, e, &Options{StartTime: "2005-09-29", EndTime: "2005-10-02"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Steps != 3 {
		t.Errorf("steps = %d, want 3", b.Steps)
	}

	// A start before the entry's declared range is data that does not
	// exist, not a malformed request.
	_, err = resolveBounds(g, e, &Options{StartTime: "1999-01-01"})
	var de *DataNotFoundError
	if !errors.As(err, &de) {
		t.Errorf("start before range: error = %v, want *DataNotFoundError", err)
	}

	if _, err := resolveBounds(g, e, &Options{StartTime: "2005-10-02", EndTime: "2005-10-01"}); err == nil {
		t.Error("no error for end before start")
	}
}
