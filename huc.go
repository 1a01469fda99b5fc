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
	"context"
	"math"
	"strconv"

	"github.com/ctessum/sparse"
)

// Watershed lookups read the HUC mapping rasters from the archive: one
// static file per grid and nesting level, holding the numeric HUC id
// of each cell. A HUC id string's length is its level.

// hucRaster reads the full HUC mapping raster for a grid and level.
func (a *Archive) hucRaster(ctx context.Context, gridName string, level int) (*sparse.DenseArray, *Grid, error) {
	o := &Options{Dataset: "huc_mapping", Variable: "huc_map", Grid: gridName, Level: level}
	e, g, b, err := a.resolve(o)
	if err != nil {
		return nil, nil, err
	}
	d, err := a.reader().ReadSubset(ctx, e, b, o)
	if err != nil {
		return nil, nil, err
	}
	return d.Values, g, nil
}

// formatHUC renders a raster cell value as a HUC id string.
func formatHUC(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HUCFromXY returns the HUC id of the watershed containing grid cell
// (x, y) at the given nesting level.
func (a *Archive) HUCFromXY(ctx context.Context, grid string, level, x, y int) (string, error) {
	raster, g, err := a.hucRaster(ctx, grid, level)
	if err != nil {
		return "", err
	}
	if x < 0 || x >= g.NX() || y < 0 || y >= g.NY() {
		return "", invalidRequestf("point (%d, %d) is outside of grid bounds %d, %d", x, y, g.NX(), g.NY())
	}
	return formatHUC(raster.Elements[y*g.NX()+x]), nil
}

// HUCFromLatLon returns the HUC id of the watershed containing the
// geographic point at the given nesting level.
func (a *Archive) HUCFromLatLon(ctx context.Context, grid string, level int, lat, lon float64) (string, error) {
	cells, err := a.Grids.LatLonToGrid(grid, lat, lon)
	if err != nil {
		return "", err
	}
	return a.HUCFromXY(ctx, grid, level, cells[0], cells[1])
}

// HUCBBox returns the grid bounding box [xmin, ymin, xmax, ymax],
// upper bounds exclusive, covering all the given watersheds. All HUC
// ids must have the same length, which is their nesting level.
func (a *Archive) HUCBBox(ctx context.Context, grid string, hucIDs []string) ([4]int, error) {
	var box [4]int
	if len(hucIDs) == 0 {
		return box, invalidRequestf("no huc ids given")
	}
	level := len(hucIDs[0])
	for _, id := range hucIDs[1:] {
		if len(id) != level {
			return box, invalidRequestf("all huc ids must be the same length: %q and %q differ", hucIDs[0], id)
		}
	}
	raster, g, err := a.hucRaster(ctx, grid, level)
	if err != nil {
		return box, err
	}

	nx, ny := g.NX(), g.NY()
	xmin, ymin := nx, ny
	xmax, ymax := -1, -1
	for _, id := range hucIDs {
		want, err := strconv.ParseFloat(id, 64)
		if err != nil {
			return box, invalidRequestf("huc id %q is not numeric", id)
		}
		found := false
		for y := 0; y < ny; y++ {
			row := raster.Elements[y*nx : (y+1)*nx]
			for x, v := range row {
				if v != want {
					continue
				}
				found = true
				xmin, xmax = min(xmin, x), max(xmax, x)
				ymin, ymax = min(ymin, y), max(ymax, y)
			}
		}
		if !found {
			return box, &DataNotFoundError{Message: "huc id " + id + " not found in grid " + grid}
		}
	}
	return [4]int{xmin, ymin, xmax + 1, ymax + 1}, nil
}
