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
	"bytes"
	"testing"

	"github.com/ctessum/sparse"
)

// testPFBArray builds an array where each cell value encodes its own
// coordinates, so any misplaced copy is detectable.
func testPFBArray(nz, ny, nx int) *sparse.DenseArray {
	a := sparse.ZerosDense(nz, ny, nx)
	i := 0
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				a.Elements[i] = float64(z*1000000 + y*1000 + x)
				i++
			}
		}
	}
	return a
}

func TestPFBShape(t *testing.T) {
	data := testPFBArray(5, 17, 23)
	var buf bytes.Buffer
	if err := WritePFB(&buf, data, 4, 3); err != nil {
		t.Fatal(err)
	}
	shape, err := PFBShape(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if shape != [3]int{5, 17, 23} {
		t.Errorf("shape = %v, want [5 17 23]", shape)
	}
}

func TestPFBReadWhole(t *testing.T) {
	data := testPFBArray(5, 17, 23)
	// 23%4 and 17%3 are both nonzero, so the file has remainder-sized
	// subgrid columns and rows.
	var buf bytes.Buffer
	if err := WritePFB(&buf, data, 4, 3); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPFB(bytes.NewReader(buf.Bytes()), 0, 0, 0, 23, 17, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got.Elements {
		if v != data.Elements[i] {
			t.Fatalf("element %d = %v, want %v", i, v, data.Elements[i])
		}
	}
}

func TestPFBReadSubset(t *testing.T) {
	nz, ny, nx := 5, 17, 23
	data := testPFBArray(nz, ny, nx)
	var buf bytes.Buffer
	if err := WritePFB(&buf, data, 4, 3); err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(buf.Bytes())

	boxes := []struct {
		name                         string
		x, y, z, xSize, ySize, zSize int
	}{
		{"inside one subgrid", 1, 1, 0, 3, 3, 1},
		{"crossing a column boundary", 4, 2, 1, 10, 4, 3},
		{"crossing a row boundary", 2, 4, 0, 4, 9, 5},
		{"crossing both boundaries", 4, 4, 2, 15, 11, 2},
		{"single cell", 22, 16, 4, 1, 1, 1},
		{"full-width slab", 0, 7, 0, nx, 3, nz},
	}
	for _, b := range boxes {
		got, err := ReadPFB(r, b.x, b.y, b.z, b.xSize, b.ySize, b.zSize)
		if err != nil {
			t.Fatalf("%s: %v", b.name, err)
		}
		for zz := 0; zz < b.zSize; zz++ {
			for yy := 0; yy < b.ySize; yy++ {
				for xx := 0; xx < b.xSize; xx++ {
					want := data.Get(b.z+zz, b.y+yy, b.x+xx)
					if got.Get(zz, yy, xx) != want {
						t.Fatalf("%s: cell (%d, %d, %d) = %v, want %v",
							b.name, zz, yy, xx, got.Get(zz, yy, xx), want)
					}
				}
			}
		}
	}
}

func TestPFBReadAllLevels(t *testing.T) {
	data := testPFBArray(4, 6, 8)
	var buf bytes.Buffer
	if err := WritePFB(&buf, data, 2, 2); err != nil {
		t.Fatal(err)
	}
	// zSize of 0 reads all levels from z up.
	got, err := ReadPFB(bytes.NewReader(buf.Bytes()), 0, 0, 1, 8, 6, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Shape[0] != 3 {
		t.Fatalf("z levels = %d, want 3", got.Shape[0])
	}
	if got.Get(0, 2, 3) != data.Get(1, 2, 3) {
		t.Errorf("level offset not applied")
	}
}

func TestPFBReadOutOfBounds(t *testing.T) {
	data := testPFBArray(2, 6, 8)
	var buf bytes.Buffer
	if err := WritePFB(&buf, data, 2, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPFB(bytes.NewReader(buf.Bytes()), 5, 0, 0, 8, 6, 2); err == nil {
		t.Error("no error for box extending past the file")
	}
}

func TestPFBEvenTopology(t *testing.T) {
	// All subgrids the same size: the remainder handling must not
	// shrink any of them.
	data := testPFBArray(3, 12, 16)
	var buf bytes.Buffer
	if err := WritePFB(&buf, data, 4, 3); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPFB(bytes.NewReader(buf.Bytes()), 3, 5, 0, 9, 6, 3)
	if err != nil {
		t.Fatal(err)
	}
	for zz := 0; zz < 3; zz++ {
		for yy := 0; yy < 6; yy++ {
			for xx := 0; xx < 9; xx++ {
				if got.Get(zz, yy, xx) != data.Get(zz, 5+yy, 3+xx) {
					t.Fatalf("cell (%d, %d, %d) misplaced", zz, yy, xx)
				}
			}
		}
	}
}
