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
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ctessum/sparse"
)

// A ParFlow binary (PFB) file is a 64-byte file header followed by
// P*Q*R subgrids, each a 36-byte header plus big-endian float64 cell
// values in z, y, x order. The file header holds the domain origin as
// 3 float64, the grid shape NX NY NZ as 3 int32, the cell size as 3
// float64, and the subgrid count as 1 int32. A subgrid header holds
// ix iy iz nx ny nz rx ry rz as 9 int32.
//
// Subgrid sizes are not uniform. With topology P = ceil(NX/nx0) for
// first-subgrid width nx0, the first NX%P columns of subgrids are nx0
// cells wide and the rest are nx0-1; likewise for rows in y. Reads
// seek directly to the subgrids intersecting the requested box instead
// of scanning the whole file.
const (
	pfbFileHeaderBytes    = 64
	pfbSubgridHeaderBytes = 36
)

type pfbFile struct {
	r          io.ReaderAt
	nx, ny, nz int // full grid shape
	sgX, sgY, sgZ int // shape of subgrid 0; the largest in the file
	p, q, topoR   int // subgrid topology
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func openPFB(r io.ReaderAt) (*pfbFile, error) {
	buf := make([]byte, pfbFileHeaderBytes+pfbSubgridHeaderBytes)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("hydrodata: reading pfb header: %v", err)
	}
	f := &pfbFile{r: r}
	f.nx = int(int32(binary.BigEndian.Uint32(buf[24:])))
	f.ny = int(int32(binary.BigEndian.Uint32(buf[28:])))
	f.nz = int(int32(binary.BigEndian.Uint32(buf[32:])))
	f.sgX = int(int32(binary.BigEndian.Uint32(buf[pfbFileHeaderBytes+12:])))
	f.sgY = int(int32(binary.BigEndian.Uint32(buf[pfbFileHeaderBytes+16:])))
	f.sgZ = int(int32(binary.BigEndian.Uint32(buf[pfbFileHeaderBytes+20:])))
	if f.nx <= 0 || f.ny <= 0 || f.nz <= 0 || f.sgX <= 0 || f.sgY <= 0 || f.sgZ <= 0 {
		return nil, fmt.Errorf("hydrodata: malformed pfb header: shape (%d, %d, %d), subgrid (%d, %d, %d)",
			f.nx, f.ny, f.nz, f.sgX, f.sgY, f.sgZ)
	}
	f.p = ceilDiv(f.nx, f.sgX)
	f.q = ceilDiv(f.ny, f.sgY)
	f.topoR = ceilDiv(f.nz, f.sgZ)
	return f, nil
}

// findSubgrid returns the number of the subgrid containing cell (x, y).
// Subgrids are numbered row major, x fastest.
func (f *pfbFile) findSubgrid(x, y int) int {
	remainX := f.nx % f.p
	remainY := f.ny % f.q

	var col int
	if remainX == 0 {
		col = x / f.sgX
	} else {
		// The first remainX columns are sgX wide, the rest sgX-1, so
		// the naive x/sgX can land one column short past the boundary.
		col = x / f.sgX
		if col > remainX && x-remainX*f.sgX-(col-remainX)*(f.sgX-1) >= f.sgX-1 {
			col++
		}
	}

	var row int
	switch {
	case remainY == 0:
		row = y / f.sgY
	case y <= remainY*f.sgY:
		row = y / f.sgY
	default:
		row = remainY + (y-remainY*f.sgY)/(f.sgY-1)
	}
	return row*f.p + col
}

// subgridOffset returns the byte offset of the header of subgrid n.
// It matches the offsets a ParFlow .dist file would list.
func (f *pfbFile) subgridOffset(n int) int64 {
	remainX := f.nx % f.p
	remainY := f.ny % f.q
	fullX, partX := remainX, f.p-remainX
	if remainX == 0 {
		fullX, partX = f.p, 0
	}
	fullY := remainY
	if remainY == 0 {
		fullY = f.q
	}

	fullFull := int64(f.sgX*f.sgY*f.sgZ*8 + pfbSubgridHeaderBytes)
	partXFull := int64((f.sgX-1)*f.sgY*f.sgZ*8 + pfbSubgridHeaderBytes)
	fullPartY := int64(f.sgX*(f.sgY-1)*f.sgZ*8 + pfbSubgridHeaderBytes)
	partXPartY := int64((f.sgX-1)*(f.sgY-1)*f.sgZ*8 + pfbSubgridHeaderBytes)

	rowFullY := int64(fullX)*fullFull + int64(partX)*partXFull
	rowPartY := int64(fullX)*fullPartY + int64(partX)*partXPartY

	row := n / f.p
	col := n - row*f.p
	off := int64(pfbFileHeaderBytes)
	if row < fullY {
		off += int64(row) * rowFullY
		if col < fullX {
			off += int64(col) * fullFull
		} else {
			off += int64(fullX)*fullFull + int64(col-fullX)*partXFull
		}
	} else {
		off += int64(fullY)*rowFullY + int64(row-fullY)*rowPartY
		if col < fullX {
			off += int64(col) * fullPartY
		} else {
			off += int64(fullX)*fullPartY + int64(col-fullX)*partXPartY
		}
	}
	return off
}

// readSubgrid reads the subgrid at byte offset off, returning its cell
// values in z, y, x order together with its position and shape.
func (f *pfbFile) readSubgrid(off int64) (data []float64, pos, shape [3]int, err error) {
	hdr := make([]byte, pfbSubgridHeaderBytes)
	if _, err = f.r.ReadAt(hdr, off); err != nil {
		return nil, pos, shape, fmt.Errorf("hydrodata: reading pfb subgrid header at %d: %v", off, err)
	}
	for i := 0; i < 3; i++ {
		pos[i] = int(int32(binary.BigEndian.Uint32(hdr[4*i:])))
		shape[i] = int(int32(binary.BigEndian.Uint32(hdr[12+4*i:])))
	}
	n := shape[0] * shape[1] * shape[2]
	if n <= 0 || shape[0] > f.sgX || shape[1] > f.sgY || shape[2] > f.sgZ {
		return nil, pos, shape, fmt.Errorf("hydrodata: malformed pfb subgrid at %d: shape (%d, %d, %d)",
			off, shape[0], shape[1], shape[2])
	}
	data = make([]float64, n)
	sr := io.NewSectionReader(f.r, off+pfbSubgridHeaderBytes, int64(n*8))
	if err = binary.Read(sr, binary.BigEndian, data); err != nil {
		return nil, pos, shape, fmt.Errorf("hydrodata: reading pfb subgrid at %d: %v", off, err)
	}
	return data, pos, shape, nil
}

// copySubgrid copies the part of one subgrid that intersects the
// requested box into out, which has shape (zSize, ySize, xSize) with
// its origin at cell (x, y, z).
func (f *pfbFile) copySubgrid(num, x, y, z, xSize, ySize, zSize int, out *sparse.DenseArray) (pos, shape [3]int, err error) {
	data, pos, shape, err := f.readSubgrid(f.subgridOffset(num))
	if err != nil {
		return pos, shape, err
	}

	var targetX, sgX int
	if pos[0] < x {
		sgX = x - pos[0]
	} else {
		targetX = pos[0] - x
	}
	endSgX := shape[0]
	if x+xSize < pos[0]+shape[0] {
		endSgX = x + xSize - pos[0]
	}

	var targetY, sgY int
	if pos[1] < y {
		sgY = y - pos[1]
	} else {
		targetY = pos[1] - y
	}
	endSgY := shape[1]
	if y+ySize < pos[1]+shape[1] {
		endSgY = y + ySize - pos[1]
	}

	if endSgX <= sgX || endSgY <= sgY || z+zSize > shape[2] {
		return pos, shape, fmt.Errorf("hydrodata: pfb subgrid %d does not cover requested box", num)
	}

	// Copy one x run at a time. Source rows are shape[0] cells wide,
	// destination rows xSize.
	run := endSgX - sgX
	for zz := 0; zz < zSize; zz++ {
		srcZ := (z + zz) * shape[1] * shape[0]
		dstZ := zz * ySize * xSize
		for yy := sgY; yy < endSgY; yy++ {
			src := srcZ + yy*shape[0] + sgX
			dst := dstZ + (targetY+yy-sgY)*xSize + targetX
			copy(out.Elements[dst:dst+run], data[src:src+run])
		}
	}
	return pos, shape, nil
}

// readBox reads the box of cells with origin (x, y, z) and size
// (xSize, ySize, zSize) into out, visiting only the subgrids the box
// intersects.
func (f *pfbFile) readBox(x, y, z, xSize, ySize, zSize int, out *sparse.DenseArray) error {
	if x < 0 || y < 0 || z < 0 ||
		x+xSize > f.nx || y+ySize > f.ny || z+zSize > f.nz {
		return invalidRequestf("pfb box origin (%d, %d, %d) size (%d, %d, %d) is outside file shape (%d, %d, %d)",
			x, y, z, xSize, ySize, zSize, f.nx, f.ny, f.nz)
	}
	num := f.findSubgrid(x, y)
	rowStart := num
	// Bounded by the subgrid count so a malformed file cannot loop
	// forever.
	for i := 0; i < f.p*f.q; i++ {
		pos, shape, err := f.copySubgrid(num, x, y, z, xSize, ySize, zSize, out)
		if err != nil {
			return err
		}
		switch {
		case x+xSize > pos[0]+shape[0]:
			num++
		case y+ySize > pos[1]+shape[1]:
			num = rowStart + f.p
			rowStart = num
		default:
			return nil
		}
	}
	return nil
}

// ReadPFB reads the box of cells with origin (x, y, z) and size
// (xSize, ySize, zSize) from a ParFlow binary file, returning an array
// of shape (zSize, ySize, xSize). A zSize of 0 reads all levels from z
// up.
func ReadPFB(r io.ReaderAt, x, y, z, xSize, ySize, zSize int) (*sparse.DenseArray, error) {
	f, err := openPFB(r)
	if err != nil {
		return nil, err
	}
	if zSize == 0 {
		zSize = f.nz - z
	}
	out := sparse.ZerosDense(zSize, ySize, xSize)
	if err := f.readBox(x, y, z, xSize, ySize, zSize, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadPFBFile is ReadPFB on a file path.
func ReadPFBFile(path string, x, y, z, xSize, ySize, zSize int) (*sparse.DenseArray, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ReadPFB(fp, x, y, z, xSize, ySize, zSize)
}

// PFBShape returns the (nz, ny, nx) shape of a ParFlow binary file
// without reading its data.
func PFBShape(r io.ReaderAt) ([3]int, error) {
	f, err := openPFB(r)
	if err != nil {
		return [3]int{}, err
	}
	return [3]int{f.nz, f.ny, f.nx}, nil
}

// WritePFB writes data, which must have shape (nz, ny, nx), as a
// ParFlow binary file distributed over a p by q by 1 subgrid topology.
// Column widths and row heights follow the ParFlow convention: the
// first nx%p columns are one cell wider than the rest, likewise rows.
func WritePFB(w io.Writer, data *sparse.DenseArray, p, q int) error {
	if len(data.Shape) != 3 {
		return fmt.Errorf("hydrodata: WritePFB needs a 3-d array, got shape %v", data.Shape)
	}
	nz, ny, nx := data.Shape[0], data.Shape[1], data.Shape[2]
	if p <= 0 || q <= 0 || p > nx || q > ny {
		return fmt.Errorf("hydrodata: WritePFB topology (%d, %d) does not fit shape (%d, %d, %d)", p, q, nz, ny, nx)
	}

	hdr := make([]byte, pfbFileHeaderBytes)
	binary.BigEndian.PutUint32(hdr[24:], uint32(nx))
	binary.BigEndian.PutUint32(hdr[28:], uint32(ny))
	binary.BigEndian.PutUint32(hdr[32:], uint32(nz))
	one := math.Float64bits(1.0)
	binary.BigEndian.PutUint64(hdr[36:], one) // dx, dy, dz
	binary.BigEndian.PutUint64(hdr[44:], one)
	binary.BigEndian.PutUint64(hdr[52:], one)
	binary.BigEndian.PutUint32(hdr[60:], uint32(p*q))
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	sgX, sgY := ceilDiv(nx, p), ceilDiv(ny, q)
	remainX, remainY := nx%p, ny%q

	iy := 0
	for row := 0; row < q; row++ {
		h := sgY
		if remainY != 0 && row >= remainY {
			h = sgY - 1
		}
		ix := 0
		for col := 0; col < p; col++ {
			wdt := sgX
			if remainX != 0 && col >= remainX {
				wdt = sgX - 1
			}
			sh := make([]byte, pfbSubgridHeaderBytes)
			for i, v := range []int{ix, iy, 0, wdt, h, nz, 1, 1, 1} {
				binary.BigEndian.PutUint32(sh[4*i:], uint32(v))
			}
			if _, err := w.Write(sh); err != nil {
				return err
			}
			vals := make([]float64, 0, nz*h*wdt)
			for z := 0; z < nz; z++ {
				for y := iy; y < iy+h; y++ {
					base := (z*ny + y) * nx
					vals = append(vals, data.Elements[base+ix:base+ix+wdt]...)
				}
			}
			if err := binary.Write(w, binary.BigEndian, vals); err != nil {
				return err
			}
			ix += wdt
		}
		iy += h
	}
	return nil
}
