// SPDX-License-Identifier: MPL-2.0

package main

import cmd "texpub-cli/cmd/texpub"

func main() {
	cmd.Execute()
}
