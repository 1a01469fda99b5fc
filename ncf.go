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
	"fmt"
	"io"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// ncfBox is a hyperslab of a NetCDF variable in canonical
// (time, z, y, x) order. All ranges are half-open. Dimensions the
// variable lacks must be the degenerate range [0, 1).
type ncfBox struct {
	t0, t1 int
	z0, z1 int
	y0, y1 int
	x0, x1 int
}

func (b ncfBox) size() int {
	return (b.t1 - b.t0) * (b.z1 - b.z0) * (b.y1 - b.y0) * (b.x1 - b.x0)
}

// canonicalDim maps a NetCDF dimension name to its canonical axis.
// Datasets name their time axis differently; anything that is not
// vertical or horizontal is treated as time.
func canonicalDim(name string) string {
	switch name {
	case "x", "lon", "longitude":
		return "x"
	case "y", "lat", "latitude":
		return "y"
	case "z", "lev", "level", "depth":
		return "z"
	}
	return "time"
}

// readNCFBox reads one hyperslab of variable v from a NetCDF file,
// returning an array of shape (nt, nz, ny, nx). dims gives the
// variable's dimension order as declared in the catalog entry; the x
// dimension must be last so each read is one contiguous run.
func readNCFBox(f *cdf.File, v string, dims []string, box ncfBox) (*sparse.DenseArray, error) {
	lengths := f.Header.Lengths(v)
	if len(lengths) == 0 {
		return nil, fmt.Errorf("hydrodata: netcdf variable %q not in file", v)
	}
	if len(dims) != len(lengths) {
		return nil, fmt.Errorf("hydrodata: netcdf variable %q has %d dimensions, catalog declares %d",
			v, len(lengths), len(dims))
	}
	if canonicalDim(dims[len(dims)-1]) != "x" {
		return nil, fmt.Errorf("hydrodata: netcdf variable %q: x must be the last dimension, have %v", v, dims)
	}

	// Per-axis half-open ranges keyed by canonical dimension.
	ranges := map[string][2]int{
		"time": {box.t0, box.t1},
		"z":    {box.z0, box.z1},
		"y":    {box.y0, box.y1},
		"x":    {box.x0, box.x1},
	}
	for i, d := range dims {
		r := ranges[canonicalDim(d)]
		// A record dimension reports length 0; it cannot be bounds
		// checked without the file size.
		if lengths[i] != 0 && r[1] > lengths[i] {
			return nil, fmt.Errorf("hydrodata: netcdf variable %q dimension %s: requested [%d, %d) exceeds length %d",
				v, d, r[0], r[1], lengths[i])
		}
	}

	nt, nz := box.t1-box.t0, box.z1-box.z0
	ny, nx := box.y1-box.y0, box.x1-box.x0
	out := sparse.ZerosDense(nt, nz, ny, nx)
	row := make([]float64, nx)

	// One reader per row: the strided reader reads the flat run
	// between two corners, so only a run along the final dimension is
	// a contiguous hyperslab.
	idx := 0
	for t := box.t0; t < box.t1; t++ {
		for z := box.z0; z < box.z1; z++ {
			for y := box.y0; y < box.y1; y++ {
				begin := make([]int, len(dims))
				end := make([]int, len(dims))
				for i, d := range dims {
					switch canonicalDim(d) {
					case "time":
						begin[i], end[i] = t, t
					case "z":
						begin[i], end[i] = z, z
					case "y":
						begin[i], end[i] = y, y
					case "x":
						begin[i], end[i] = box.x0, box.x1-1
					}
				}
				r := f.Reader(v, begin, end)
				if r == nil {
					return nil, fmt.Errorf("hydrodata: netcdf variable %q not in file", v)
				}
				buf := r.Zero(nx)
				if _, err := r.Read(buf); err != nil && err != io.EOF {
					return nil, fmt.Errorf("hydrodata: reading netcdf variable %q: %v", v, err)
				}
				if err := bufToFloat64(buf, row); err != nil {
					return nil, fmt.Errorf("hydrodata: netcdf variable %q: %v", v, err)
				}
				copy(out.Elements[idx:idx+nx], row)
				idx += nx
			}
		}
	}
	return out, nil
}

// bufToFloat64 converts a typed buffer returned by Reader.Zero into
// float64 cell values.
func bufToFloat64(buf interface{}, out []float64) error {
	switch v := buf.(type) {
	case []float64:
		copy(out, v)
	case []float32:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []int32:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []int16:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []uint8:
		for i, x := range v {
			out[i] = float64(x)
		}
	default:
		return fmt.Errorf("unsupported netcdf data type %T", buf)
	}
	return nil
}
