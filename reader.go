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
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds the number of files read in parallel.
const maxConcurrentReads = 8

// A Fetcher downloads a file from the remote archive into the local
// file tree when it is not already present.
type Fetcher interface {
	Fetch(ctx context.Context, remotePath, localPath string) error
}

// Data is the result of a subset read: cell values together with the
// names of the dimensions of their array, in order. Degenerate
// dimensions are dropped: a static entry has no time dimension, and
// the z dimension only appears when the variable has one and the
// request did not select a single level.
type Data struct {
	Values *sparse.DenseArray
	Dims   []string
	Entry  *Entry
	Bounds *Bounds
}

// Reader reads subsets of gridded files from a local archive tree.
type Reader struct {
	Root  string  // archive root directory
	Fetch Fetcher // optional; used when a file is missing locally
	Log   *logrus.Logger
}

// filePart is the portion of the result one file contributes: records
// [first, first+n) of the file land at time steps [step, step+n) of the
// result.
type filePart struct {
	path  string
	first int
	n     int
	step  int
}

// splitParts assigns each file its local record range and its offset
// into the result time axis. Offsets come from a running counter over
// the spans in time order, so the result has no gaps even when files
// hold different numbers of records, as at a water year boundary.
func splitParts(e *Entry, b *Bounds, spans []fileSpan) ([]filePart, error) {
	if !e.Period.IsTemporal() {
		if len(spans) != 1 {
			return nil, fmt.Errorf("hydrodata: static entry %s resolved to %d files", e.ID, len(spans))
		}
		return []filePart{{path: spans[0].Path, first: 0, n: 1, step: 0}}, nil
	}
	var parts []filePart
	step := 0
	for _, s := range spans {
		lo, hi := s.Start, s.End
		if b.TimeStart.After(lo) {
			lo = b.TimeStart
		}
		if b.TimeEnd.Before(hi) {
			hi = b.TimeEnd
		}
		if !hi.After(lo) {
			continue
		}
		n := e.Period.Steps(lo, hi)
		parts = append(parts, filePart{
			path:  s.Path,
			first: e.Period.Steps(s.Start, lo),
			n:     n,
			step:  step,
		})
		step += n
	}
	if step != b.Steps {
		return nil, fmt.Errorf("hydrodata: entry %s: files cover %d time steps, request needs %d", e.ID, step, b.Steps)
	}
	return parts, nil
}

// ReadSubset reads the subset described by b from the files of entry e,
// stitching multiple files together along the time axis. Files are
// read concurrently; each file writes a disjoint range of the result.
func (r *Reader) ReadSubset(ctx context.Context, e *Entry, b *Bounds, o *Options) (*Data, error) {
	spans, err := fileSpans(e, o, b.TimeStart, b.TimeEnd)
	if err != nil {
		return nil, err
	}
	parts, err := splitParts(e, b, spans)
	if err != nil {
		return nil, err
	}

	nz, ny, nx := b.Levels(), b.Height(), b.Width()
	result := sparse.ZerosDense(b.Steps, nz, ny, nx)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentReads)
	for _, p := range parts {
		p := p
		eg.Go(func() error {
			return r.readPart(ctx, e, b, p, result)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	values, dims := adjustDimensions(e, b, result)
	return &Data{Values: values, Dims: dims, Entry: e, Bounds: b}, nil
}

// readPart reads one file's records into its slot of the result array.
func (r *Reader) readPart(ctx context.Context, e *Entry, b *Bounds, p filePart, result *sparse.DenseArray) error {
	f, err := r.open(ctx, p.path)
	if err != nil {
		return err
	}
	defer f.Close()
	if r.Log != nil {
		r.Log.WithFields(logrus.Fields{
			"path": p.path, "records": p.n, "step": p.step,
		}).Debug("reading subset file")
	}

	nz, ny, nx := b.Levels(), b.Height(), b.Width()
	recSize := nz * ny * nx
	off := p.step * recSize

	switch e.FileType {
	case FileTypePFB:
		var arr *sparse.DenseArray
		if e.HasZ {
			// The file z axis holds vertical levels, so it can carry
			// only one time record.
			if p.n != 1 {
				return fmt.Errorf("hydrodata: entry %s: %d records in one file of a variable with a z dimension", e.ID, p.n)
			}
			arr, err = ReadPFB(f, b.XMin, b.YMin, b.ZStart, nx, ny, nz)
		} else {
			// The file z axis holds the time records.
			arr, err = ReadPFB(f, b.XMin, b.YMin, p.first, nx, ny, p.n)
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", p.path, err)
		}
		copy(result.Elements[off:off+len(arr.Elements)], arr.Elements)

	case FileTypeNetCDF:
		ff, err := cdf.Open(f)
		if err != nil {
			return fmt.Errorf("hydrodata: opening %s: %v", p.path, err)
		}
		box := ncfBox{
			t0: p.first, t1: p.first + p.n,
			z0: 0, z1: 1,
			y0: b.YMin, y1: b.YMax,
			x0: b.XMin, x1: b.XMax,
		}
		if e.HasZ {
			box.z0, box.z1 = b.ZStart, b.ZStop
		}
		arr, err := readNCFBox(ff, e.DatasetVar, e.Dims, box)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p.path, err)
		}
		copy(result.Elements[off:off+len(arr.Elements)], arr.Elements)

	default:
		return fmt.Errorf("hydrodata: entry %s: unsupported file type %q", e.ID, e.FileType)
	}
	return nil
}

// open opens one archive file, fetching it from the remote archive
// first if it is missing locally and a Fetcher is configured.
func (r *Reader) open(ctx context.Context, path string) (*os.File, error) {
	local := filepath.Join(r.Root, filepath.FromSlash(path))
	f, err := os.Open(local)
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	if r.Fetch == nil {
		return nil, &DataNotFoundError{Path: path, Message: "file does not exist in the archive"}
	}
	if err := r.Fetch.Fetch(ctx, path, local); err != nil {
		return nil, err
	}
	return os.Open(local)
}

// adjustDimensions drops the degenerate dimensions of the canonical
// (time, z, y, x) result.
func adjustDimensions(e *Entry, b *Bounds, arr *sparse.DenseArray) (*sparse.DenseArray, []string) {
	var dims []string
	var shape []int
	if e.Period.IsTemporal() {
		dims = append(dims, "time")
		shape = append(shape, b.Steps)
	}
	if e.HasZ && !b.zSingle {
		dims = append(dims, "z")
		shape = append(shape, b.Levels())
	}
	dims = append(dims, "y", "x")
	shape = append(shape, b.Height(), b.Width())

	out := sparse.ZerosDense(shape...)
	copy(out.Elements, arr.Elements)
	return out, dims
}
