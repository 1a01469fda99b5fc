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
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the accepted request time formats, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-2006",
	"01/02/2006, 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05.000000000",
	"01/02/2006",
	"01/02/06",
}

// ParseTime parses a request time value.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", value)
}

// WaterYear returns the water year containing t and the start of that
// water year. Water years run October 1 through September 30 and are
// named for the calendar year they end in.
func WaterYear(t time.Time) (string, time.Time) {
	if t.Month() >= time.October {
		return strconv.Itoa(t.Year() + 1), time.Date(t.Year(), time.October, 1, 0, 0, 0, 0, t.Location())
	}
	return strconv.Itoa(t.Year()), time.Date(t.Year()-1, time.October, 1, 0, 0, 0, 0, t.Location())
}

// substitutePath fills the substitution keys in a path template from
// the entry, the request options, and one time value. Recognized keys:
//
//	{dataset_var}                    the entry's variable name in its files
//	{wy} {wy_plus1} {wy_minus1}      water year containing the time value
//	{wy_daynum}                      1-based day number within the water year
//	{wy_hour}                        1-based hour number within the water year
//	{wy_start_24hr} {wy_end_24hr}    first/last water-year hour of the day, zero padded
//	{wy_mdy} {mdy} {mmddyyyy}        MMDDYYYY
//	{ymd}                            YYYYMMDD
//	{month}                          month number
//	{site_id} {level}                from the request options
func substitutePath(tmpl string, e *Entry, o *Options, tv time.Time) string {
	pairs := []string{
		"{dataset_var}", e.DatasetVar,
		"{site_id}", o.SiteID,
		"{level}", strconv.Itoa(o.Level),
	}
	if !tv.IsZero() {
		wy, wyStart := WaterYear(tv)
		wyInt, _ := strconv.Atoi(wy)
		days := int(tv.Sub(wyStart).Hours() / 24)
		hours := int(tv.Sub(wyStart).Hours())
		mdy := tv.Format("01022006")
		pairs = append(pairs,
			"{wy}", wy,
			"{wy_plus1}", strconv.Itoa(wyInt+1),
			"{wy_minus1}", strconv.Itoa(wyInt-1),
			"{wy_daynum}", strconv.Itoa(days+1),
			"{wy_hour}", strconv.Itoa(hours+1),
			"{wy_start_24hr}", fmt.Sprintf("%06d", days*24+1),
			"{wy_end_24hr}", fmt.Sprintf("%06d", days*24+24),
			"{wy_mdy}", mdy,
			"{mdy}", mdy,
			"{mmddyyyy}", mdy,
			"{ymd}", tv.Format("20060102"),
			"{month}", strconv.Itoa(int(tv.Month())),
		)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// fileSpan is one underlying file together with the half-open time
// range its records cover. Static files have zero times.
type fileSpan struct {
	Path  string
	Start time.Time
	End   time.Time
}

// fileSpans returns, in time order, the files whose declared span
// intersects the half-open range [start, end), according to the entry's
// grouping. Static files have no span. A site file holds the entry's
// whole series, so its span is the entry's declared date range.
func fileSpans(e *Entry, o *Options, start, end time.Time) ([]fileSpan, error) {
	switch e.Grouping {
	case GroupingStatic:
		return []fileSpan{{Path: substitutePath(e.Path, e, o, start)}}, nil
	case GroupingSite:
		if o.SiteID == "" {
			return nil, invalidRequestf("entry %s requires a site_id", e.ID)
		}
		span := fileSpan{Path: substitutePath(e.Path, e, o, start)}
		if e.Period.IsTemporal() {
			// Records run from the entry's first date through its last,
			// inclusive, so the span ends one period past EntryEnd. An
			// entry without a declared range covers exactly the request.
			span.Start, span.End = e.EntryStart, e.Period.AddTo(e.EntryEnd)
			if e.EntryStart.IsZero() || e.EntryEnd.IsZero() {
				span.Start, span.End = start, end
			}
		}
		return []fileSpan{span}, nil
	case GroupingWaterYear:
		var spans []fileSpan
		_, wyStart := WaterYear(start)
		for t := wyStart; t.Before(end); t = t.AddDate(1, 0, 0) {
			spans = append(spans, fileSpan{
				Path:  substitutePath(e.Path, e, o, t),
				Start: t,
				End:   t.AddDate(1, 0, 0),
			})
		}
		return spans, nil
	case GroupingDailyFile:
		var spans []fileSpan
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		for t := day; t.Before(end); t = t.AddDate(0, 0, 1) {
			spans = append(spans, fileSpan{
				Path:  substitutePath(e.Path, e, o, t),
				Start: t,
				End:   t.AddDate(0, 0, 1),
			})
		}
		return spans, nil
	}
	return nil, fmt.Errorf("hydrodata: unhandled file grouping %v", e.Grouping)
}

// FilePaths returns the paths (relative to the archive root) of the
// files a request would read, in time order.
func FilePaths(e *Entry, o *Options) ([]string, error) {
	start, end, err := o.timeRange()
	if err != nil {
		return nil, err
	}
	if e.Period.IsTemporal() {
		if start.IsZero() {
			return nil, invalidRequestf("entry %s has a time dimension; start_time is required", e.ID)
		}
		if end.IsZero() {
			end = e.Period.AddTo(start)
		}
	}
	spans, err := fileSpans(e, o, start, end)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(spans))
	for i, s := range spans {
		paths[i] = s.Path
	}
	return paths, nil
}
