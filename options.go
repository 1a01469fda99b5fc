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
	"strings"
	"time"
)

// Options is a request's filter attributes. The catalog attributes
// (Dataset, Variable, TemporalResolution, Aggregation, Grid) select a
// catalog entry; the remaining attributes select the subset to read.
// The zero value of an attribute means "not specified".
type Options struct {
	Dataset            string
	Variable           string
	TemporalResolution string
	Aggregation        string
	Grid               string

	// GridBounds is [xmin, ymin, xmax, ymax] in cell indices,
	// inclusive-exclusive. Mutually exclusive with LatLonBounds.
	GridBounds []int
	// LatLonBounds is [latmin, lonmin, latmax, lonmax] in degrees.
	LatLonBounds []float64
	// X, Y select a single cell instead of a box.
	X, Y *int
	// ZRange selects vertical levels: nil reads all levels, one value
	// reads a single level, two values read the half-open range.
	ZRange []int

	// StartTime and EndTime bound the request in time, half-open.
	// Accepted layouts are those of ParseTime. EndTime without
	// StartTime is invalid; StartTime without EndTime reads one period.
	StartTime string
	EndTime   string

	// SiteID selects the file for site-grouped entries.
	SiteID string
	// Level selects the watershed nesting level for HUC mapping
	// entries.
	Level int
}

// Validate checks the options once at the request boundary. It returns
// an InvalidRequestError describing the first problem found.
func (o *Options) Validate() error {
	if o.GridBounds != nil && o.LatLonBounds != nil {
		return invalidRequestf("cannot specify both grid_bounds and latlon_bounds")
	}
	if o.GridBounds != nil && len(o.GridBounds) != 4 {
		return invalidRequestf("grid_bounds must have 4 values [xmin, ymin, xmax, ymax], has %d", len(o.GridBounds))
	}
	if o.LatLonBounds != nil && len(o.LatLonBounds) != 4 {
		return invalidRequestf("latlon_bounds must have 4 values [latmin, lonmin, latmax, lonmax], has %d", len(o.LatLonBounds))
	}
	if (o.X == nil) != (o.Y == nil) {
		return invalidRequestf("x and y must be specified together")
	}
	if o.X != nil && (o.GridBounds != nil || o.LatLonBounds != nil) {
		return invalidRequestf("cannot specify both a point and bounds")
	}
	if len(o.ZRange) > 2 {
		return invalidRequestf("z_range must have at most 2 values, has %d", len(o.ZRange))
	}
	if len(o.ZRange) == 2 && o.ZRange[0] >= o.ZRange[1] {
		return invalidRequestf("z_range start %d must be less than stop %d", o.ZRange[0], o.ZRange[1])
	}
	if o.EndTime != "" && o.StartTime == "" {
		return invalidRequestf("end_time specified without start_time")
	}
	if _, _, err := o.timeRange(); err != nil {
		return err
	}
	return nil
}

// timeRange parses the raw time attributes. Zero times mean
// unspecified; range defaulting happens during bounds resolution where
// the entry's period is known.
func (o *Options) timeRange() (start, end time.Time, err error) {
	if o.StartTime != "" {
		start, err = ParseTime(o.StartTime)
		if err != nil {
			return time.Time{}, time.Time{}, invalidRequestf("start_time: %v", err)
		}
	}
	if o.EndTime != "" {
		end, err = ParseTime(o.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, invalidRequestf("end_time: %v", err)
		}
	}
	return start, end, nil
}

// filterString renders the catalog filter attributes for error
// messages.
func (o *Options) filterString() string {
	var parts []string
	for _, kv := range [][2]string{
		{"dataset", o.Dataset},
		{"variable", o.Variable},
		{"temporal_resolution", o.TemporalResolution},
		{"aggregation", o.Aggregation},
		{"grid", o.Grid},
	} {
		if kv[1] != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", kv[0], kv[1]))
		}
	}
	if len(parts) == 0 {
		return "(no filter)"
	}
	return strings.Join(parts, " ")
}
