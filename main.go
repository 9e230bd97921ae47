// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/capgate/cmd/capgate"

func main() {
	cmd.Execute()
}
