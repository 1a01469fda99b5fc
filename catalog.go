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

	"github.com/BurntSushi/toml"
)

// Period is the temporal resolution of a catalog entry.
type Period string

// Temporal resolutions used by the archive's datasets.
const (
	Hourly  Period = "hourly"
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Static  Period = "static"
)

// IsTemporal reports whether data with this period has a time dimension.
func (p Period) IsTemporal() bool { return p != Static && p != "" }

// AddTo advances t by one period.
func (p Period) AddTo(t time.Time) time.Time {
	switch p {
	case Hourly:
		return t.Add(time.Hour)
	case Daily:
		return t.AddDate(0, 0, 1)
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	default:
		return t
	}
}

// Steps returns the number of period steps in the half-open range
// [start, end).
func (p Period) Steps(start, end time.Time) int {
	n := 0
	for t := start; t.Before(end); t = p.AddTo(t) {
		n++
	}
	return n
}

// Grouping identifies how a dataset's time series is split across
// underlying files.
type Grouping int

// File grouping variants. The Subsetting Reader switches exhaustively
// over these; adding a variant requires extending every switch.
const (
	// GroupingStatic is a single file with no time series.
	GroupingStatic Grouping = iota
	// GroupingWaterYear is one file per water year, with one record per
	// period step along the file's record axis (day, week, or month
	// number within the water year).
	GroupingWaterYear
	// GroupingDailyFile is one file per calendar day: 24 records for
	// hourly data, one record for daily data.
	GroupingDailyFile
	// GroupingSite is one file per observation site, selected by the
	// request's site id.
	GroupingSite
)

func (g Grouping) String() string {
	switch g {
	case GroupingStatic:
		return "static"
	case GroupingWaterYear:
		return "water_year"
	case GroupingDailyFile:
		return "daily_file"
	case GroupingSite:
		return "site"
	}
	return fmt.Sprintf("Grouping(%d)", int(g))
}

func parseGrouping(s string) (Grouping, error) {
	switch s {
	case "static", "":
		return GroupingStatic, nil
	case "water_year":
		return GroupingWaterYear, nil
	case "daily_file":
		return GroupingDailyFile, nil
	case "site":
		return GroupingSite, nil
	}
	return 0, fmt.Errorf("hydrodata: unknown file grouping %q", s)
}

// FileType identifies the on-disk format of an entry's files.
type FileType string

// File formats the Subsetting Reader understands.
const (
	FileTypePFB    FileType = "pfb"
	FileTypeNetCDF FileType = "netcdf"
)

// Entry is one data catalog record: the file layout contract for a
// (dataset, variable, period, aggregation, grid) combination. The
// Subsetting Reader treats it as opaque input supplied by the catalog.
type Entry struct {
	ID            string
	Dataset       string
	Variable      string
	Period        Period
	Aggregation   string
	Grid          string
	FileType      FileType
	StructureType string
	DatasetVar    string
	Path          string // template relative to the archive root
	Grouping      Grouping
	HasZ          bool
	Dims          []string // netcdf dimension order, e.g. ["time", "y", "x"]

	EntryStart time.Time // first date with data, inclusive
	EntryEnd   time.Time // last date with data, inclusive
}

// VerifyTimeRange checks that a requested start time falls within the
// entry's declared date range.
func (e *Entry) VerifyTimeRange(start time.Time) error {
	if !e.Period.IsTemporal() || start.IsZero() {
		return nil
	}
	if !e.EntryStart.IsZero() && start.Before(e.EntryStart) ||
		!e.EntryEnd.IsZero() && start.After(e.EntryEnd) {
		return &DataNotFoundError{Message: fmt.Sprintf(
			"the start time %q is not within the available date range between %q and %q for %s/%s",
			start.Format("2006-01-02"), e.EntryStart.Format("2006-01-02"),
			e.EntryEnd.Format("2006-01-02"), e.Dataset, e.Variable)}
	}
	return nil
}

// Catalog is the set of known catalog entries. It is read-only after
// construction.
type Catalog struct {
	entries []*Entry
}

type catalogFile struct {
	Entry []catalogEntryDef `toml:"entry"`
}

type catalogEntryDef struct {
	ID             string   `toml:"id"`
	Dataset        string   `toml:"dataset"`
	Variable       string   `toml:"variable"`
	Period         string   `toml:"period"`
	Aggregation    string   `toml:"aggregation"`
	Grid           string   `toml:"grid"`
	FileType       string   `toml:"file_type"`
	StructureType  string   `toml:"structure_type"`
	DatasetVar     string   `toml:"dataset_var"`
	Path           string   `toml:"path"`
	Grouping       string   `toml:"grouping"`
	HasZ           bool     `toml:"has_z"`
	Dims           []string `toml:"dims"`
	EntryStartDate string   `toml:"entry_start_date"`
	EntryEndDate   string   `toml:"entry_end_date"`
}

// NewCatalog builds the catalog from the built-in entry definitions.
func NewCatalog() (*Catalog, error) {
	return LoadCatalog(builtinCatalog)
}

// LoadCatalog decodes catalog entries from TOML text.
func LoadCatalog(tomlData string) (*Catalog, error) {
	var cf catalogFile
	if _, err := toml.Decode(tomlData, &cf); err != nil {
		return nil, fmt.Errorf("hydrodata: decoding catalog: %v", err)
	}
	c := &Catalog{entries: make([]*Entry, 0, len(cf.Entry))}
	for _, def := range cf.Entry {
		grouping, err := parseGrouping(def.Grouping)
		if err != nil {
			return nil, err
		}
		e := &Entry{
			ID:            def.ID,
			Dataset:       def.Dataset,
			Variable:      def.Variable,
			Period:        Period(def.Period),
			Aggregation:   def.Aggregation,
			Grid:          strings.ToLower(def.Grid),
			FileType:      FileType(def.FileType),
			StructureType: def.StructureType,
			DatasetVar:    def.DatasetVar,
			Path:          def.Path,
			Grouping:      grouping,
			HasZ:          def.HasZ,
			Dims:          def.Dims,
		}
		if def.EntryStartDate != "" {
			e.EntryStart, err = ParseTime(def.EntryStartDate)
			if err != nil {
				return nil, fmt.Errorf("hydrodata: catalog entry %s: %v", def.ID, err)
			}
		}
		if def.EntryEndDate != "" {
			e.EntryEnd, err = ParseTime(def.EntryEndDate)
			if err != nil {
				return nil, fmt.Errorf("hydrodata: catalog entry %s: %v", def.ID, err)
			}
		}
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Entries returns all entries matching the filter attributes set in o.
// Unset attributes match everything.
func (c *Catalog) Entries(o *Options) []*Entry {
	var out []*Entry
	for _, e := range c.entries {
		if o.Dataset != "" && o.Dataset != e.Dataset {
			continue
		}
		if o.Variable != "" && o.Variable != e.Variable {
			continue
		}
		if o.TemporalResolution != "" && Period(o.TemporalResolution) != e.Period {
			continue
		}
		if o.Aggregation != "" && o.Aggregation != e.Aggregation {
			continue
		}
		if o.Grid != "" && !strings.EqualFold(o.Grid, e.Grid) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EntryFor returns the single entry matching the filter attributes in o.
// Zero matches or more than one match is an InvalidRequestError; the
// caller must narrow the filter rather than have an entry chosen for
// them.
func (c *Catalog) EntryFor(o *Options) (*Entry, error) {
	matches := c.Entries(o)
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, invalidRequestf("no entry found in data catalog for %s", o.filterString())
	default:
		ids := make([]string, len(matches))
		for i, e := range matches {
			ids[i] = e.ID
		}
		return nil, invalidRequestf("ambiguous catalog filter %s matches entries %s",
			o.filterString(), strings.Join(ids, ", "))
	}
}
