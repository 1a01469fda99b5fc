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

// builtinCatalog lists the catalog entries this client ships with. Path
// templates are relative to the archive root and use the substitution
// keys documented in paths.go. The catalog service can supersede these
// via LoadCatalog.
const builtinCatalog = `
[[entry]]
id = "nldas2_precipitation_hourly"
dataset = "NLDAS2"
variable = "precipitation"
period = "hourly"
aggregation = "sum"
grid = "conus1"
file_type = "pfb"
structure_type = "gridded"
dataset_var = "APCP"
path = "forcing/NLDAS2/conus1/WY{wy}/NLDAS.APCP.{wy_start_24hr}_to_{wy_end_24hr}.pfb"
grouping = "daily_file"
entry_start_date = "2002-10-01"
entry_end_date = "2006-09-30"

[[entry]]
id = "nldas2_precipitation_daily"
dataset = "NLDAS2"
variable = "precipitation"
period = "daily"
aggregation = "sum"
grid = "conus1"
file_type = "pfb"
structure_type = "gridded"
dataset_var = "APCP"
path = "forcing/NLDAS2/conus1/WY{wy}/NLDAS.APCP.daily.pfb"
grouping = "water_year"
entry_start_date = "2002-10-01"
entry_end_date = "2006-09-30"

[[entry]]
id = "conus1_baseline_pressure_head_daily"
dataset = "conus1_baseline"
variable = "pressure_head"
period = "daily"
aggregation = "mean"
grid = "conus1"
file_type = "pfb"
structure_type = "gridded"
dataset_var = "press"
path = "PFCLM/conus1_baseline/WY{wy}/press.{wy_daynum}.pfb"
grouping = "daily_file"
has_z = true
entry_start_date = "2002-10-01"
entry_end_date = "2006-09-30"

[[entry]]
id = "conus1_domain_slope_x"
dataset = "conus1_domain"
variable = "slope_x"
period = "static"
aggregation = "-"
grid = "conus1"
file_type = "pfb"
structure_type = "gridded"
dataset_var = "slope_x"
path = "domain/conus1/slope_x.pfb"
grouping = "static"

[[entry]]
id = "cw3e_air_temperature_hourly"
dataset = "CW3E"
variable = "air_temp"
period = "hourly"
aggregation = "mean"
grid = "conus2"
file_type = "netcdf"
structure_type = "gridded"
dataset_var = "Temp"
path = "forcing/CW3E/conus2/WY{wy}/CW3E.Temp.{ymd}.nc"
grouping = "daily_file"
dims = ["time", "y", "x"]
entry_start_date = "2002-10-01"
entry_end_date = "2006-09-30"

[[entry]]
id = "huc_mapping_conus1"
dataset = "huc_mapping"
variable = "huc_map"
period = "static"
aggregation = "-"
grid = "conus1"
file_type = "netcdf"
structure_type = "gridded"
dataset_var = "huc_map"
path = "domain/conus1/huc{level}.nc"
grouping = "static"
dims = ["y", "x"]

[[entry]]
id = "huc_mapping_conus2"
dataset = "huc_mapping"
variable = "huc_map"
period = "static"
aggregation = "-"
grid = "conus2"
file_type = "netcdf"
structure_type = "gridded"
dataset_var = "huc_map"
path = "domain/conus2/huc{level}.nc"
grouping = "static"
dims = ["y", "x"]
`
