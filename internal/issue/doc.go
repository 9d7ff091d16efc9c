// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors with remediation hints and a catalog of
// Markdown help pages for the failures a packaging or unpacking run can hit.
package issue
