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

// builtinGrids defines the fixed set of archive grids. The projection
// constants match the pyproj definitions the archive's datasets were
// registered against (ESRI:102004 for conus1; the ParFlow CONUS2 sphere
// for conus2), so cell indices agree with the archive's published
// domains. Origins are in projected meters at the grid's lower-left
// corner.
const builtinGrids = `
[grids.conus1]
shape = [5, 1888, 3342] # z, y, x
resolution_meters = 1000.0
origin = [-1885055.4995, -604957.0654]
crs = "+proj=lcc +lat_1=33.0 +lat_2=45.0 +lat_0=39.0 +lon_0=-96.0 +x_0=0 +y_0=0 +a=6378137.0 +b=6356752.314245179 +units=m +no_defs"

[grids.conus2]
shape = [10, 3256, 4442] # z, y, x
resolution_meters = 1000.0
origin = [-2208000.30881173, -1668999.65483222]
crs = "+proj=lcc +lat_1=30.0 +lat_2=60.0 +lat_0=40.0000076294444 +lon_0=-97.0 +x_0=0 +y_0=0 +a=6370000.0 +b=6370000.0 +units=m +no_defs"
`
