// SPDX-License-Identifier: Apache-2.0

package version

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)
