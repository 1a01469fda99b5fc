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

// Package hydrodatautil holds the command-line interface for the
// hydrodata archive client.
package hydrodatautil

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hydroframe/hydrodata"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the archive
	// client.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "root",
			usage: `
              root specifies the archive root directory. Files missing
              under it are downloaded from the remote archive.`,
			shorthand:  "r",
			defaultVal: "/hydrodata",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "remote_url",
			usage: `
              remote_url specifies the remote archive API endpoint used
              to download files that are missing locally.`,
			defaultVal: hydrodata.DefaultRemoteURL,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_level",
			usage: `
              log_level sets the logging verbosity: debug, info, warn,
              or error.`,
			defaultVal: "warn",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "dataset",
			usage: `
              dataset filters the data catalog by dataset name.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "variable",
			usage: `
              variable filters the data catalog by variable name.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "temporal_resolution",
			usage: `
              temporal_resolution filters the data catalog by period:
              hourly, daily, weekly, monthly, or static.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "aggregation",
			usage: `
              aggregation filters the data catalog by aggregation, for
              example sum, mean, min, or max.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "grid",
			usage: `
              grid filters the data catalog by grid name, for example
              conus1 or conus2.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "start_time",
			usage: `
              start_time is the start of the time range to read,
              inclusive, for example 2005-10-01.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "end_time",
			usage: `
              end_time is the end of the time range to read, exclusive.
              If omitted, one period starting at start_time is read.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "grid_bounds",
			usage: `
              grid_bounds specifies the box to read in grid cell
              indices as "xmin,ymin,xmax,ymax", upper bounds exclusive.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "latlon_bounds",
			usage: `
              latlon_bounds specifies the box to read in geographic
              coordinates as "latmin,lonmin,latmax,lonmax".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "z",
			usage: `
              z specifies the vertical levels to read as a single index
              or as a "start,stop" range with stop exclusive. The
              default reads all levels.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "site_id",
			usage: `
              site_id selects the observation site for site-grouped
              catalog entries.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags()},
		},
		{
			name: "level",
			usage: `
              level is the watershed nesting level for HUC mapping
              entries.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), pathsCmd.Flags(), hucCmd.PersistentFlags()},
		},
		{
			name: "out",
			usage: `
              out is the NetCDF file the fetched subset is written to.`,
			shorthand:  "o",
			defaultVal: "out.nc",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("HYDRODATA")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(fetchCmd)
	Root.AddCommand(pathsCmd)
	Root.AddCommand(latlonCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(hucCmd)
	Root.AddCommand(registerCmd)
	hucCmd.AddCommand(hucBoxCmd)
	hucCmd.AddCommand(hucPointCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("hydrodata: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// archive builds the archive client from the configuration.
func archive(cfg *viper.Viper) (*hydrodata.Archive, error) {
	a, err := hydrodata.NewArchive(cfg.GetString("root"))
	if err != nil {
		return nil, err
	}
	level, err := logrus.ParseLevel(cfg.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("hydrodata: %v", err)
	}
	a.Log.Level = level
	a.Fetch = &hydrodata.Remote{URL: cfg.GetString("remote_url"), Log: a.Log}
	return a, nil
}

// requestOptions builds the request filter from the configuration.
func requestOptions(cfg *viper.Viper) (*hydrodata.Options, error) {
	o := &hydrodata.Options{
		Dataset:            cfg.GetString("dataset"),
		Variable:           cfg.GetString("variable"),
		TemporalResolution: cfg.GetString("temporal_resolution"),
		Aggregation:        cfg.GetString("aggregation"),
		Grid:               cfg.GetString("grid"),
		StartTime:          cfg.GetString("start_time"),
		EndTime:            cfg.GetString("end_time"),
		SiteID:             cfg.GetString("site_id"),
		Level:              cast.ToInt(cfg.Get("level")),
	}
	var err error
	if s := cfg.GetString("grid_bounds"); s != "" {
		if o.GridBounds, err = parseInts(s); err != nil {
			return nil, fmt.Errorf("hydrodata: grid_bounds: %v", err)
		}
	}
	if s := cfg.GetString("latlon_bounds"); s != "" {
		if o.LatLonBounds, err = parseFloats(s); err != nil {
			return nil, fmt.Errorf("hydrodata: latlon_bounds: %v", err)
		}
	}
	if s := cfg.GetString("z"); s != "" {
		if o.ZRange, err = parseInts(s); err != nil {
			return nil, fmt.Errorf("hydrodata: z: %v", err)
		}
	}
	return o, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "hydrodata",
	Short: "A client for the hydrologic data archive.",
	Long: `hydrodata reads subsets of gridded hydrologic data from a ParFlow
data archive. Use the subcommands specified below to access the
archive functionality.

Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the
format 'HYDRODATA_var' where 'var' is the name of the variable to be
set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of hydrodata.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("hydrodata v%s\n", hydrodata.Version)
	},
	DisableAutoGenTag: true,
}

// pathsCmd lists the files a request would read.
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the archive files a request would read.",
	Long: `paths resolves the catalog entry selected by the filter flags and
prints the archive-relative paths of the files the request would read,
in time order, without reading them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := archive(Cfg)
		if err != nil {
			return err
		}
		o, err := requestOptions(Cfg)
		if err != nil {
			return err
		}
		paths, err := a.FilePaths(o)
		if err != nil {
			return err
		}
		for _, p := range paths {
			cmd.Println(p)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// latlonCmd converts grid cell coordinates to geographic coordinates.
var latlonCmd = &cobra.Command{
	Use:   "latlon grid x y [x y]...",
	Short: "Convert grid cells to lat/lon points.",
	Long: `latlon converts one or more x y cell coordinates of the named grid
to latitude and longitude, printed one pair per line.`,
	Args: argPairsAfterGrid,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := archive(Cfg)
		if err != nil {
			return err
		}
		coords, err := parseFloats(strings.Join(args[1:], ","))
		if err != nil {
			return err
		}
		latlon, err := a.Grids.GridToLatLon(args[0], coords...)
		if err != nil {
			return err
		}
		for i := 0; i < len(latlon); i += 2 {
			cmd.Printf("%.6f %.6f\n", latlon[i], latlon[i+1])
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// gridCmd converts geographic coordinates to grid cells.
var gridCmd = &cobra.Command{
	Use:   "grid grid lat lon [lat lon]...",
	Short: "Convert lat/lon points to grid cells.",
	Long: `grid converts one or more latitude longitude points to cell indices
of the named grid, printed one pair per line. Two points are treated as
opposite corners of a box and print its bounding cell box.`,
	Args: argPairsAfterGrid,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := archive(Cfg)
		if err != nil {
			return err
		}
		coords, err := parseFloats(strings.Join(args[1:], ","))
		if err != nil {
			return err
		}
		cells, err := a.Grids.LatLonToGrid(args[0], coords...)
		if err != nil {
			return err
		}
		for i := 0; i < len(cells); i += 2 {
			cmd.Printf("%d %d\n", cells[i], cells[i+1])
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var hucCmd = &cobra.Command{
	Use:   "huc",
	Short: "Watershed lookups.",
	Long: `huc looks up watershed (HUC) information from the archive's HUC
mapping rasters. Use the subcommands specified below.`,
	DisableAutoGenTag: true,
}

// hucBoxCmd prints the grid bounding box of a set of watersheds.
var hucBoxCmd = &cobra.Command{
	Use:   "box grid huc_id [huc_id]...",
	Short: "Bounding box of watersheds.",
	Long: `box prints the grid cell bounding box "xmin ymin xmax ymax", upper
bounds exclusive, covering all the given HUC ids. All ids must be the
same length.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := archive(Cfg)
		if err != nil {
			return err
		}
		box, err := a.HUCBBox(context.Background(), args[0], args[1:])
		if err != nil {
			return err
		}
		cmd.Printf("%d %d %d %d\n", box[0], box[1], box[2], box[3])
		return nil
	},
	DisableAutoGenTag: true,
}

// hucPointCmd prints the watershed containing a point.
var hucPointCmd = &cobra.Command{
	Use:   "point grid lat lon",
	Short: "Watershed containing a point.",
	Long: `point prints the HUC id of the watershed containing the given
latitude and longitude at the nesting level set by --level.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := archive(Cfg)
		if err != nil {
			return err
		}
		coords, err := parseFloats(strings.Join(args[1:], ","))
		if err != nil {
			return err
		}
		id, err := a.HUCFromLatLon(context.Background(), args[0],
			cast.ToInt(Cfg.Get("level")), coords[0], coords[1])
		if err != nil {
			return err
		}
		cmd.Println(id)
		return nil
	},
	DisableAutoGenTag: true,
}

// registerCmd stores the user's archive credentials.
var registerCmd = &cobra.Command{
	Use:   "register email pin",
	Short: "Register archive credentials.",
	Long: `register stores the email and PIN created on the archive website in
the user's home directory. Later commands use them to authenticate
downloads from the remote archive.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hydrodata.RegisterPIN(args[0], args[1])
	},
	DisableAutoGenTag: true,
}

// argPairsAfterGrid requires a grid name followed by one or more
// coordinate pairs.
func argPairsAfterGrid(cmd *cobra.Command, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("requires a grid name and at least one coordinate pair")
	}
	if len(args)%2 != 1 {
		return fmt.Errorf("coordinates must come in pairs, have %d values", len(args)-1)
	}
	return nil
}
