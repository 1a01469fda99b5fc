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
	"errors"
	"strings"
	"testing"
	"time"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestEntryForExactMatch(t *testing.T) {
	c := testCatalog(t)
	e, err := c.EntryFor(&Options{
		Dataset: "NLDAS2", Variable: "precipitation", TemporalResolution: "hourly",
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "nldas2_precipitation_hourly" {
		t.Errorf("entry = %s", e.ID)
	}
	if e.Grouping != GroupingDailyFile || e.FileType != FileTypePFB {
		t.Errorf("grouping = %v, file type = %v", e.Grouping, e.FileType)
	}
}

func TestEntryForAmbiguous(t *testing.T) {
	c := testCatalog(t)
	// NLDAS2 precipitation exists at both hourly and daily resolution;
	// the filter must be narrowed by the caller, never guessed.
	_, err := c.EntryFor(&Options{Dataset: "NLDAS2", Variable: "precipitation"})
	var ie *InvalidRequestError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *InvalidRequestError", err)
	}
	if !strings.Contains(err.Error(), "nldas2_precipitation_hourly") {
		t.Errorf("ambiguity error does not name the candidates: %v", err)
	}
}

func TestEntryForNoMatch(t *testing.T) {
	c := testCatalog(t)
	_, err := c.EntryFor(&Options{Dataset: "no_such_dataset"})
	var ie *InvalidRequestError
	if !errors.As(err, &ie) {
		t.Errorf("error = %v, want *InvalidRequestError", err)
	}
}

func TestEntriesFilter(t *testing.T) {
	c := testCatalog(t)
	all := c.Entries(&Options{})
	if len(all) < 5 {
		t.Fatalf("built-in catalog has %d entries", len(all))
	}
	pfb := 0
	for _, e := range c.Entries(&Options{Grid: "conus1"}) {
		if e.Grid != "conus1" {
			t.Errorf("entry %s has grid %s", e.ID, e.Grid)
		}
		if e.FileType == FileTypePFB {
			pfb++
		}
	}
	if pfb == 0 {
		t.Error("no pfb entries on conus1")
	}
}

func TestVerifyTimeRange(t *testing.T) {
	e := dailyEntry()
	if err := e.VerifyTimeRange(time.Date(2004, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Errorf("in-range start rejected: %v", err)
	}
	err := e.VerifyTimeRange(time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC))
	var de *DataNotFoundError
	if !errors.As(err, &de) {
		t.Errorf("error = %v, want *DataNotFoundError", err)
	}
	if !strings.Contains(err.Error(), "2002-10-01") || !strings.Contains(err.Error(), "2006-09-30") {
		t.Errorf("error does not state the available range: %v", err)
	}
}

func TestLoadCatalogBadGrouping(t *testing.T) {
	_, err := LoadCatalog(`
[[entry]]
id = "bad"
grouping = "fortnightly"
`)
	if err == nil {
		t.Error("no error for unknown grouping")
	}
}

func TestPeriodSteps(t *testing.T) {
	start := time.Date(2005, 10, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		period Period
		end    time.Time
		want   int
	}{
		{Hourly, start.Add(26 * time.Hour), 26},
		{Daily, start.AddDate(0, 0, 7), 7},
		{Weekly, start.AddDate(0, 0, 21), 3},
		{Monthly, start.AddDate(1, 0, 0), 12},
	}
	for _, c := range cases {
		if got := c.period.Steps(start, c.end); got != c.want {
			t.Errorf("%s steps to %v = %d, want %d", c.period, c.end, got, c.want)
		}
	}
	if Static.IsTemporal() {
		t.Error("static period is temporal")
	}
	if !Hourly.IsTemporal() {
		t.Error("hourly period is not temporal")
	}
}
