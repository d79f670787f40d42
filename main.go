// SPDX-License-Identifier: MPL-2.0

// Command stratum builds container images by replaying a descriptor's
// ordered USER and RUN steps on top of a base image.
package main

import cmd "stratum-cli/cmd/stratum"

func main() {
	cmd.Execute()
}
