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

	"github.com/ctessum/geom/proj"
)

// Projection converts between geodetic coordinates (latitude and longitude
// in decimal degrees, EPSG:4326) and planar projected coordinates (meters
// from the grid origin) for one grid's Lambert Conformal Conic projection.
// The reference surface may be an ellipsoid (distinct +a and +b in the
// PROJ string) or a sphere (+a equal to +b). A Projection is immutable
// after construction and safe for concurrent use.
type Projection struct {
	grid    string
	forward proj.Transformer // lon,lat degrees -> x,y meters from origin
	inverse proj.Transformer // x,y meters from origin -> lon,lat degrees
}

// newProjection builds the forward and inverse transformers for a grid.
// The grid origin is applied as the projection's false easting and
// northing, so projected coordinates come out as meters from the grid's
// lower-left corner rather than from the projection's natural origin.
func newProjection(grid, crs string, originX, originY float64) (*Projection, error) {
	sr, err := proj.Parse(crs)
	if err != nil {
		return nil, &ProjectionError{Grid: grid, Err: err}
	}
	sr.X0 = -originX
	sr.Y0 = -originY

	// Fail on degenerate parameter sets now rather than on first use.
	if _, _, err := sr.Transformers(); err != nil {
		return nil, &ProjectionError{Grid: grid, Err: err}
	}

	geodetic, err := proj.Parse(fmt.Sprintf(
		"+proj=longlat +a=%.9f +b=%.9f +no_defs", sr.A, sr.B))
	if err != nil {
		return nil, &ProjectionError{Grid: grid, Err: err}
	}
	fwd, err := geodetic.NewTransform(sr)
	if err != nil {
		return nil, &ProjectionError{Grid: grid, Err: err}
	}
	inv, err := sr.NewTransform(geodetic)
	if err != nil {
		return nil, &ProjectionError{Grid: grid, Err: err}
	}
	return &Projection{grid: grid, forward: fwd, inverse: inv}, nil
}

// Forward converts a geodetic point to projected meters from the grid
// origin. Coordinates far outside the projection's valid hemisphere are
// not rejected and may produce large, meaningless values.
func (p *Projection) Forward(lat, lon float64) (x, y float64, err error) {
	x, y, err = p.forward(lon, lat)
	if err != nil {
		return 0, 0, &ProjectionError{Grid: p.grid, Err: err}
	}
	return x, y, nil
}

// Inverse converts projected meters from the grid origin back to a
// geodetic point.
func (p *Projection) Inverse(x, y float64) (lat, lon float64, err error) {
	lon, lat, err = p.inverse(x, y)
	if err != nil {
		return 0, 0, &ProjectionError{Grid: p.grid, Err: err}
	}
	return lat, lon, nil
}

// ForwardSlice converts parallel slices of latitudes and longitudes to
// projected coordinates.
func (p *Projection) ForwardSlice(lats, lons []float64) (xs, ys []float64, err error) {
	if len(lats) != len(lons) {
		return nil, nil, invalidRequestf("latitude and longitude slices have mismatched lengths %d and %d", len(lats), len(lons))
	}
	xs = make([]float64, len(lats))
	ys = make([]float64, len(lats))
	for i := range lats {
		xs[i], ys[i], err = p.Forward(lats[i], lons[i])
		if err != nil {
			return nil, nil, err
		}
	}
	return xs, ys, nil
}

// InverseSlice converts parallel slices of projected coordinates to
// latitudes and longitudes.
func (p *Projection) InverseSlice(xs, ys []float64) (lats, lons []float64, err error) {
	if len(xs) != len(ys) {
		return nil, nil, invalidRequestf("x and y slices have mismatched lengths %d and %d", len(xs), len(ys))
	}
	lats = make([]float64, len(xs))
	lons = make([]float64, len(xs))
	for i := range xs {
		lats[i], lons[i], err = p.Inverse(xs[i], ys[i])
		if err != nil {
			return nil, nil, err
		}
	}
	return lats, lons, nil
}
