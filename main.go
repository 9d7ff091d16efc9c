// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/natpack/natpack/cmd/natpack"

func main() {
	cmd.Execute()
}
