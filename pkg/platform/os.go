// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons. The config package switches
// on these to pick the per-platform config directory.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
