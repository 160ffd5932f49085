/*
trinket-test - Smoke test of the serial link to the Trinket
Copyright (C) 2024, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"
	"os"
	"strings"

	holdserial "github.com/TheCacophonyProject/trinket-test/internal/hold-serial"
	"github.com/TheCacophonyProject/trinket-test/internal/logging"
	trinkettest "github.com/TheCacophonyProject/trinket-test/internal/trinket-test"
)

var log = logging.NewLogger("info")

var version = "<not set>"

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

// runMain runs the smoke test unless a subcommand is given first.
func runMain() error {
	args := os.Args[1:]
	subcommand := "smoke-test"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		subcommand = args[0]
		args = args[1:]
	}

	switch subcommand {
	case "smoke-test":
		return trinkettest.Run(args, version)
	case "hold-serial":
		return holdserial.Run(args, version)
	default:
		return fmt.Errorf("unknown subcommand: %s", subcommand)
	}
}
