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

package hydrodatautil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/hydroframe/hydrodata"
	"github.com/spf13/cobra"
)

// fetchCmd reads a subset and saves it as a NetCDF file.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Read a subset of gridded data.",
	Long: `fetch reads the subset of gridded data selected by the filter flags,
downloading any missing archive files first, and writes the result to
the NetCDF file named by --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := archive(Cfg)
		if err != nil {
			return err
		}
		o, err := requestOptions(Cfg)
		if err != nil {
			return err
		}
		d, err := a.ReadSubset(context.Background(), o)
		if err != nil {
			return err
		}
		out := Cfg.GetString("out")
		if err := writeNetCDF(out, d); err != nil {
			return err
		}
		cmd.Printf("wrote %s %v to %s\n", strings.Join(d.Dims, ","), d.Values.Shape, out)
		return nil
	},
	DisableAutoGenTag: true,
}

// writeNetCDF saves one subset result as a NetCDF file with a single
// variable named for the catalog entry's variable.
func writeNetCDF(path string, d *hydrodata.Data) error {
	h := cdf.NewHeader(d.Dims, d.Values.Shape)
	h.AddVariable(d.Entry.Variable, d.Dims, []float64{0})
	h.AddAttribute(d.Entry.Variable, "dataset", d.Entry.Dataset)
	h.AddAttribute(d.Entry.Variable, "grid", d.Entry.Grid)
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("hydrodata: building netcdf header: %v", errs[0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	ff, err := cdf.Create(f, h)
	if err != nil {
		f.Close()
		return fmt.Errorf("hydrodata: creating %s: %v", path, err)
	}
	w := ff.Writer(d.Entry.Variable, nil, nil)
	if _, err := w.Write(d.Values.Elements); err != nil {
		f.Close()
		return fmt.Errorf("hydrodata: writing %s: %v", path, err)
	}
	return f.Close()
}
