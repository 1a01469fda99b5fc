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
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

// writeNCFFixture creates a NetCDF file holding one float64 variable
// with the given dimensions, written in row-major order.
func writeNCFFixture(t *testing.T, path, varName string, dims []string, lengths []int, data []float64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddVariable(varName, dims, []float64{0})
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		t.Fatal(errs[0])
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ff, err := cdf.Create(f, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ff.Writer(varName, nil, nil).Write(data); err != nil {
		t.Fatal(err)
	}
}

func openNCFFixture(t *testing.T, path string) *cdf.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	ff, err := cdf.Open(f)
	if err != nil {
		t.Fatal(err)
	}
	return ff
}

func TestReadNCFBox(t *testing.T) {
	nt, ny, nx := 4, 10, 12
	data := make([]float64, nt*ny*nx)
	for i := range data {
		data[i] = float64(i)
	}
	path := filepath.Join(t.TempDir(), "f.nc")
	writeNCFFixture(t, path, "Temp", []string{"time", "y", "x"}, []int{nt, ny, nx}, data)
	ff := openNCFFixture(t, path)

	boxes := []ncfBox{
		{t0: 0, t1: nt, z0: 0, z1: 1, y0: 0, y1: ny, x0: 0, x1: nx},
		{t0: 1, t1: 3, z0: 0, z1: 1, y0: 2, y1: 7, x0: 3, x1: 11},
		{t0: 2, t1: 3, z0: 0, z1: 1, y0: 9, y1: 10, x0: 11, x1: 12},
	}
	for _, box := range boxes {
		got, err := readNCFBox(ff, "Temp", []string{"time", "y", "x"}, box)
		if err != nil {
			t.Fatalf("box %+v: %v", box, err)
		}
		for tt := box.t0; tt < box.t1; tt++ {
			for y := box.y0; y < box.y1; y++ {
				for x := box.x0; x < box.x1; x++ {
					want := data[(tt*ny+y)*nx+x]
					if v := got.Get(tt-box.t0, 0, y-box.y0, x-box.x0); v != want {
						t.Fatalf("box %+v cell (%d, %d, %d) = %v, want %v", box, tt, y, x, v, want)
					}
				}
			}
		}
	}
}

func TestReadNCFBoxWithZ(t *testing.T) {
	nz, ny, nx := 3, 5, 6
	data := make([]float64, nz*ny*nx)
	for i := range data {
		data[i] = float64(i) * 0.5
	}
	path := filepath.Join(t.TempDir(), "f.nc")
	writeNCFFixture(t, path, "press", []string{"z", "y", "x"}, []int{nz, ny, nx}, data)
	ff := openNCFFixture(t, path)

	got, err := readNCFBox(ff, "press", []string{"z", "y", "x"},
		ncfBox{t0: 0, t1: 1, z0: 1, z1: 3, y0: 1, y1: 4, x0: 2, x1: 5})
	if err != nil {
		t.Fatal(err)
	}
	for z := 1; z < 3; z++ {
		for y := 1; y < 4; y++ {
			for x := 2; x < 5; x++ {
				want := data[(z*ny+y)*nx+x]
				if v := got.Get(0, z-1, y-1, x-2); v != want {
					t.Fatalf("cell (%d, %d, %d) = %v, want %v", z, y, x, v, want)
				}
			}
		}
	}
}

func TestReadNCFBoxErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.nc")
	writeNCFFixture(t, path, "v", []string{"y", "x"}, []int{4, 5}, make([]float64, 20))
	ff := openNCFFixture(t, path)

	if _, err := readNCFBox(ff, "nope", []string{"y", "x"},
		ncfBox{t0: 0, t1: 1, z0: 0, z1: 1, y0: 0, y1: 4, x0: 0, x1: 5}); err == nil {
		t.Error("no error for missing variable")
	}
	if _, err := readNCFBox(ff, "v", []string{"y", "x"},
		ncfBox{t0: 0, t1: 1, z0: 0, z1: 1, y0: 0, y1: 4, x0: 0, x1: 6}); err == nil {
		t.Error("no error for x range past the dimension length")
	}
	if _, err := readNCFBox(ff, "v", []string{"x", "y"},
		ncfBox{t0: 0, t1: 1, z0: 0, z1: 1, y0: 0, y1: 4, x0: 0, x1: 5}); err == nil {
		t.Error("no error for x not being the last dimension")
	}
}
