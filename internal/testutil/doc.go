// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers: file tree and zip fixtures, environment and working
// directory overrides. Helpers fail the test on error instead of returning it.
package testutil
