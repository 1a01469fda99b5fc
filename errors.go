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

import "fmt"

// GridNotFoundError is returned when a named grid is not in the registry.
type GridNotFoundError struct {
	Name string
}

func (e *GridNotFoundError) Error() string {
	return fmt.Sprintf("hydrodata: no such grid %q available", e.Name)
}

// ProjectionError is returned when a grid's projection parameters are
// degenerate or a transform cannot be evaluated.
type ProjectionError struct {
	Grid string
	Err  error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("hydrodata: projection for grid %q: %v", e.Grid, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }

// InvalidRequestError is returned for malformed or degenerate request
// parameters: bad bounds, mismatched coordinate slice lengths, missing
// required temporal filters, or points outside the grid.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return "hydrodata: " + e.Message
}

func invalidRequestf(format string, args ...interface{}) error {
	return &InvalidRequestError{Message: fmt.Sprintf(format, args...)}
}

// DataNotFoundError is returned when the catalog declares data that is
// absent from the archive: a file for a time segment that should exist,
// or a request outside the entry's declared date range.
type DataNotFoundError struct {
	Path    string
	Message string
}

func (e *DataNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("hydrodata: data not found: %s: %s", e.Path, e.Message)
	}
	return "hydrodata: data not found: " + e.Message
}
