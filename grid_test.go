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
	"math"
	"reflect"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	r := testRegistry(t)
	if want := []string{"conus1", "conus2"}; !reflect.DeepEqual(r.Names(), want) {
		t.Errorf("Names() = %v, want %v", r.Names(), want)
	}
	g, err := r.Grid("CONUS1") // names are case-insensitive
	if err != nil {
		t.Fatal(err)
	}
	if g.NX() != 3342 || g.NY() != 1888 || g.NZ() != 5 {
		t.Errorf("conus1 shape = (%d, %d, %d)", g.NZ(), g.NY(), g.NX())
	}
	_, err = r.Grid("conus99")
	var ge *GridNotFoundError
	if !errors.As(err, &ge) {
		t.Fatalf("error = %v, want *GridNotFoundError", err)
	}
	if ge.Name != "conus99" {
		t.Errorf("error grid name = %q", ge.Name)
	}
}

func TestGridToLatLonRoundTrip(t *testing.T) {
	r := testRegistry(t)
	for _, name := range r.Names() {
		latlon, err := r.GridToLatLon(name, 100, 200, 1000.5, 800.25)
		if err != nil {
			t.Fatal(err)
		}
		xy, err := r.LatLonToXY(name, latlon...)
		if err != nil {
			t.Fatal(err)
		}
		want := []float64{100, 200, 1000.5, 800.25}
		for i := range want {
			if math.Abs(xy[i]-want[i]) > 1e-6 {
				t.Errorf("%s: cell %d = %g, want %g", name, i, xy[i], want[i])
			}
		}
	}
}

func TestLatLonToGridBox(t *testing.T) {
	r := testRegistry(t)
	// Two pairs are box corners: the result must contain both points
	// and be ordered min to max even when the corners are given in
	// descending order.
	box, err := r.LatLonToGrid("conus1", 36.5, -97.2, 33.1, -99.4)
	if err != nil {
		t.Fatal(err)
	}
	if box[0] >= box[2] || box[1] >= box[3] {
		t.Fatalf("box %v is not min-ordered", box)
	}
	xy, err := r.LatLonToXY("conus1", 36.5, -97.2, 33.1, -99.4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(xy); i += 2 {
		if xy[i] < float64(box[0]) || xy[i] > float64(box[2]) ||
			xy[i+1] < float64(box[1]) || xy[i+1] > float64(box[3]) {
			t.Errorf("corner (%g, %g) outside box %v", xy[i], xy[i+1], box)
		}
	}
}

func TestLatLonToGridMultiplePoints(t *testing.T) {
	r := testRegistry(t)
	// Three or more pairs round each point independently.
	cells, err := r.LatLonToGrid("conus1", 36.5, -97.2, 33.1, -99.4, 39.0, -98.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 6 {
		t.Fatalf("len(cells) = %d, want 6", len(cells))
	}
	xy, err := r.LatLonToXY("conus1", 36.5, -97.2, 33.1, -99.4, 39.0, -98.0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range cells {
		if cells[i] != int(math.Round(xy[i])) {
			t.Errorf("cell %d = %d, want round(%g)", i, cells[i], xy[i])
		}
	}
}

func TestLatLonToXYOutsideGrid(t *testing.T) {
	r := testRegistry(t)
	_, err := r.LatLonToXY("conus1", 0, 0) // gulf of Guinea, far off-grid
	var ie *InvalidRequestError
	if !errors.As(err, &ie) {
		t.Errorf("error = %v, want *InvalidRequestError", err)
	}
}

func TestCoordinatePairValidation(t *testing.T) {
	r := testRegistry(t)
	if _, err := r.GridToLatLon("conus1"); err == nil {
		t.Error("no error for empty coordinate list")
	}
	if _, err := r.GridToLatLon("conus1", 1, 2, 3); err == nil {
		t.Error("no error for odd coordinate list")
	}
}

func TestMetersToGrid(t *testing.T) {
	r := testRegistry(t)
	m, err := r.ToMeters("conus1", 31.759219, -115.902573)
	if err != nil {
		t.Fatal(err)
	}
	cells, err := r.MetersToGrid("conus1", m...)
	if err != nil {
		t.Fatal(err)
	}
	if cells[0] != 10 || cells[1] != 10 {
		t.Errorf("cell = (%d, %d), want (10, 10)", cells[0], cells[1])
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	_, err := loadRegistry(`
[grids.bad]
shape = [5, 1888]
resolution_meters = 1000.0
origin = [0.0, 0.0]
crs = "+proj=longlat"
`)
	if err == nil {
		t.Error("no error for 2-element shape")
	}
	_, err = loadRegistry(`
[grids.bad]
shape = [5, 1888, 3342]
resolution_meters = 0.0
origin = [0.0, 0.0]
crs = "+proj=longlat"
`)
	if err == nil {
		t.Error("no error for zero resolution")
	}
}
