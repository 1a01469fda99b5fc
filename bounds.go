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
	"math"
	"time"

	"github.com/gonum/floats"
)

// Bounds is the canonical index-space slice of one request, resolved
// before any file I/O happens. All index ranges are half-open.
type Bounds struct {
	XMin, YMin, XMax, YMax int
	ZStart, ZStop          int
	TimeStart, TimeEnd     time.Time
	Steps                  int // period steps in [TimeStart, TimeEnd); 1 for static entries

	// zSingle records that the caller asked for one z index rather
	// than a range, so the z dimension is dropped from the result.
	zSingle bool
}

// Width returns the number of cells in the x dimension.
func (b *Bounds) Width() int { return b.XMax - b.XMin }

// Height returns the number of cells in the y dimension.
func (b *Bounds) Height() int { return b.YMax - b.YMin }

// Levels returns the number of vertical levels.
func (b *Bounds) Levels() int { return b.ZStop - b.ZStart }

// resolveBounds normalizes a request's spatial, vertical, and temporal
// filters into one canonical Bounds for the given grid and entry.
func resolveBounds(g *Grid, e *Entry, o *Options) (*Bounds, error) {
	b := &Bounds{}
	if err := resolveSpatial(b, g, o); err != nil {
		return nil, err
	}
	if err := resolveVertical(b, g, e, o); err != nil {
		return nil, err
	}
	if err := resolveTemporal(b, e, o); err != nil {
		return nil, err
	}
	return b, nil
}

func resolveSpatial(b *Bounds, g *Grid, o *Options) error {
	switch {
	case o.X != nil:
		x, y := *o.X, *o.Y
		if x < 0 || x >= g.NX() || y < 0 || y >= g.NY() {
			return invalidRequestf("point (%d, %d) is outside of grid bounds %d, %d", x, y, g.NX(), g.NY())
		}
		b.XMin, b.XMax = x, x+1
		b.YMin, b.YMax = y, y+1
		return nil

	case o.GridBounds != nil:
		b.XMin, b.YMin, b.XMax, b.YMax = o.GridBounds[0], o.GridBounds[1], o.GridBounds[2], o.GridBounds[3]

	case o.LatLonBounds != nil:
		// Convert all 4 corners, not just 2: a conformal projection
		// maps a geographic rectangle to a region that is not axis
		// aligned in grid space, and the resolved box must contain all
		// of it.
		latMin, lonMin, latMax, lonMax := o.LatLonBounds[0], o.LatLonBounds[1], o.LatLonBounds[2], o.LatLonBounds[3]
		xs := make([]float64, 4)
		ys := make([]float64, 4)
		corners := [4][2]float64{
			{latMin, lonMin}, {latMin, lonMax}, {latMax, lonMin}, {latMax, lonMax},
		}
		for i, c := range corners {
			x, y, err := g.proj.Forward(c[0], c[1])
			if err != nil {
				return err
			}
			xs[i] = x / g.Resolution
			ys[i] = y / g.Resolution
		}
		b.XMin = int(math.Floor(floats.Min(xs)))
		b.YMin = int(math.Floor(floats.Min(ys)))
		b.XMax = int(math.Ceil(floats.Max(xs)))
		b.YMax = int(math.Ceil(floats.Max(ys)))

	default:
		b.XMin, b.YMin, b.XMax, b.YMax = 0, 0, g.NX(), g.NY()
		return nil
	}

	if b.XMin >= b.XMax || b.YMin >= b.YMax {
		return invalidRequestf("degenerate bounds [%d, %d, %d, %d]: min must be less than max",
			b.XMin, b.YMin, b.XMax, b.YMax)
	}
	if b.XMax <= 0 || b.YMax <= 0 || b.XMin >= g.NX() || b.YMin >= g.NY() {
		return invalidRequestf("bounds [%d, %d, %d, %d] do not intersect grid %s extent [0, %d) x [0, %d)",
			b.XMin, b.YMin, b.XMax, b.YMax, g.Name, g.NX(), g.NY())
	}
	// Clip a partial overlap to the grid extent.
	b.XMin = max(b.XMin, 0)
	b.YMin = max(b.YMin, 0)
	b.XMax = min(b.XMax, g.NX())
	b.YMax = min(b.YMax, g.NY())
	return nil
}

func resolveVertical(b *Bounds, g *Grid, e *Entry, o *Options) error {
	if !e.HasZ {
		if o.ZRange != nil {
			return invalidRequestf("variable %s has no z dimension", e.Variable)
		}
		b.ZStart, b.ZStop = 0, 1
		return nil
	}
	switch len(o.ZRange) {
	case 0:
		b.ZStart, b.ZStop = 0, g.NZ()
	case 1:
		z := o.ZRange[0]
		if z < 0 || z >= g.NZ() {
			return invalidRequestf("z index %d is outside of [0, %d)", z, g.NZ())
		}
		b.ZStart, b.ZStop = z, z+1
		b.zSingle = true
	case 2:
		b.ZStart, b.ZStop = o.ZRange[0], o.ZRange[1]
		if b.ZStart < 0 || b.ZStop > g.NZ() {
			return invalidRequestf("z_range [%d, %d) is outside of [0, %d)", b.ZStart, b.ZStop, g.NZ())
		}
	}
	return nil
}

func resolveTemporal(b *Bounds, e *Entry, o *Options) error {
	if !e.Period.IsTemporal() {
		b.Steps = 1
		return nil
	}
	start, end, err := o.timeRange()
	if err != nil {
		return err
	}
	if start.IsZero() {
		return invalidRequestf("dataset %s has a time dimension; start_time is required", e.Dataset)
	}
	if err := e.VerifyTimeRange(start); err != nil {
		return err
	}
	if end.IsZero() {
		end = e.Period.AddTo(start)
	}
	if !end.After(start) {
		return invalidRequestf("end_time %q is not after start_time %q", o.EndTime, o.StartTime)
	}
	b.TimeStart, b.TimeEnd = start, end
	b.Steps = e.Period.Steps(start, end)
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
