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

// Command hydrodata is a command-line client for the hydrologic data
// archive.
package main

import (
	"fmt"
	"os"

	"github.com/hydroframe/hydrodata/hydrodatautil"
)

func main() {
	if err := hydrodatautil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
