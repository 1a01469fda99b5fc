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
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gonum/floats"
)

// Grid is a fixed raster: a projection plus an origin, a uniform
// resolution, and integer dimensions. origin + resolution + shape fully
// determine the mapping between cell indices and projected coordinates.
// Grids are immutable after registry construction.
type Grid struct {
	Name       string
	Shape      [3]int // NZ, NY, NX
	Resolution float64
	OriginX    float64
	OriginY    float64
	CRS        string

	proj *Projection
}

// NX returns the number of cells in the x dimension.
func (g *Grid) NX() int { return g.Shape[2] }

// NY returns the number of cells in the y dimension.
func (g *Grid) NY() int { return g.Shape[1] }

// NZ returns the number of vertical levels.
func (g *Grid) NZ() int { return g.Shape[0] }

// Projection returns the grid's coordinate transforms.
func (g *Grid) Projection() *Projection { return g.proj }

// Registry is the static lookup table of archive grids. It is loaded
// once and read-only thereafter, so it is safe for concurrent use.
type Registry struct {
	grids map[string]*Grid
}

type gridFile struct {
	Grids map[string]gridDef `toml:"grids"`
}

type gridDef struct {
	Shape            []int     `toml:"shape"`
	ResolutionMeters float64   `toml:"resolution_meters"`
	Origin           []float64 `toml:"origin"`
	CRS              string    `toml:"crs"`
}

// NewRegistry builds the registry from the built-in grid definitions.
func NewRegistry() (*Registry, error) {
	return loadRegistry(builtinGrids)
}

func loadRegistry(tomlData string) (*Registry, error) {
	var gf gridFile
	if _, err := toml.Decode(tomlData, &gf); err != nil {
		return nil, fmt.Errorf("hydrodata: decoding grid definitions: %v", err)
	}
	r := &Registry{grids: make(map[string]*Grid, len(gf.Grids))}
	for name, def := range gf.Grids {
		if len(def.Shape) != 3 {
			return nil, fmt.Errorf("hydrodata: grid %s: shape must have 3 dimensions, has %d", name, len(def.Shape))
		}
		if len(def.Origin) != 2 {
			return nil, fmt.Errorf("hydrodata: grid %s: origin must have 2 coordinates, has %d", name, len(def.Origin))
		}
		if def.ResolutionMeters <= 0 {
			return nil, fmt.Errorf("hydrodata: grid %s: resolution must be positive", name)
		}
		g := &Grid{
			Name:       strings.ToLower(name),
			Shape:      [3]int{def.Shape[0], def.Shape[1], def.Shape[2]},
			Resolution: def.ResolutionMeters,
			OriginX:    def.Origin[0],
			OriginY:    def.Origin[1],
			CRS:        def.CRS,
		}
		var err error
		g.proj, err = newProjection(g.Name, g.CRS, g.OriginX, g.OriginY)
		if err != nil {
			return nil, err
		}
		r.grids[g.Name] = g
	}
	return r, nil
}

// Grid looks up a grid by name. Names are case-insensitive.
func (r *Registry) Grid(name string) (*Grid, error) {
	g, ok := r.grids[strings.ToLower(name)]
	if !ok {
		return nil, &GridNotFoundError{Name: name}
	}
	return g, nil
}

// Names returns the registered grid names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.grids))
	for n := range r.grids {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// checkPairs validates a flat coordinate-pair argument list.
func checkPairs(coords []float64) error {
	if len(coords) == 0 {
		return invalidRequestf("at least one coordinate pair must be provided")
	}
	if len(coords)%2 == 1 {
		return invalidRequestf("coordinate list must have an even number of values, has %d", len(coords))
	}
	return nil
}

// ToMeters converts lat,lon pairs to projected x,y meters from the grid
// origin. The input is a flat list of lat,lon pairs and the output is a
// flat list of x,y pairs.
func (r *Registry) ToMeters(grid string, coords ...float64) ([]float64, error) {
	g, err := r.Grid(grid)
	if err != nil {
		return nil, err
	}
	if err := checkPairs(coords); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(coords))
	for i := 0; i < len(coords); i += 2 {
		x, y, err := g.proj.Forward(coords[i], coords[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, x, y)
	}
	return out, nil
}

// LatLonToXY converts lat,lon pairs to fractional cell coordinates.
// Points that map outside the grid shape are rejected.
func (r *Registry) LatLonToXY(grid string, coords ...float64) ([]float64, error) {
	g, err := r.Grid(grid)
	if err != nil {
		return nil, err
	}
	meters, err := r.ToMeters(grid, coords...)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(meters))
	for i := 0; i < len(meters); i += 2 {
		x := meters[i] / g.Resolution
		y := meters[i+1] / g.Resolution
		if rx, ry := math.Round(x), math.Round(y); rx < 0 || rx >= float64(g.NX()) || ry < 0 || ry >= float64(g.NY()) {
			return nil, invalidRequestf(
				"the lat/lon point (%g, %g) maps to cell (%d, %d) which is outside of grid bounds %d, %d",
				coords[i], coords[i+1], int(rx), int(ry), g.NX(), g.NY())
		}
		out[i] = x
		out[i+1] = y
	}
	return out, nil
}

// LatLonToGrid converts lat,lon pairs to integer cell indices. A single
// pair rounds to the nearest cell center. Exactly two pairs are treated
// as opposite corners of a box: the result is [xmin, ymin, xmax, ymax]
// with the min corner floored and the max corner ceiled, so the returned
// box always contains both converted corners. More than two pairs round
// each point independently.
func (r *Registry) LatLonToGrid(grid string, coords ...float64) ([]int, error) {
	xy, err := r.LatLonToXY(grid, coords...)
	if err != nil {
		return nil, err
	}
	if len(xy) == 4 {
		xs := []float64{xy[0], xy[2]}
		ys := []float64{xy[1], xy[3]}
		return []int{
			int(math.Floor(floats.Min(xs))),
			int(math.Floor(floats.Min(ys))),
			int(math.Ceil(floats.Max(xs))),
			int(math.Ceil(floats.Max(ys))),
		}, nil
	}
	out := make([]int, len(xy))
	for i, v := range xy {
		out[i] = int(math.Round(v))
	}
	return out, nil
}

// GridToLatLon converts x,y cell coordinates to lat,lon pairs. The cell
// coordinates may be fractional for sub-cell precision.
func (r *Registry) GridToLatLon(grid string, coords ...float64) ([]float64, error) {
	g, err := r.Grid(grid)
	if err != nil {
		return nil, err
	}
	if err := checkPairs(coords); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(coords))
	for i := 0; i < len(coords); i += 2 {
		lat, lon, err := g.proj.Inverse(coords[i]*g.Resolution, coords[i+1]*g.Resolution)
		if err != nil {
			return nil, err
		}
		out = append(out, lat, lon)
	}
	return out, nil
}

// MetersToGrid converts projected x,y meter pairs (as returned by
// ToMeters) to integer cell indices, rounding to the nearest cell
// center. Unlike LatLonToGrid it does not reject points outside the
// grid.
func (r *Registry) MetersToGrid(grid string, coords ...float64) ([]int, error) {
	g, err := r.Grid(grid)
	if err != nil {
		return nil, err
	}
	if err := checkPairs(coords); err != nil {
		return nil, err
	}
	out := make([]int, len(coords))
	for i, v := range coords {
		out[i] = int(math.Round(v / g.Resolution))
	}
	return out, nil
}
