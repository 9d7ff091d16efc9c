// SPDX-License-Identifier: MPL-2.0

// Package config loads the natpack application configuration using Viper with CUE as the
// file format.
//
// The file lives at $XDG_CONFIG_HOME/natpack/config.cue (~/.config by default),
// ~/Library/Application Support/natpack/config.cue on macOS and %APPDATA%\natpack\config.cue
// on Windows. A config.cue in the working directory is used when the user file is absent.
// Every field is optional and validated against the embedded config_schema.cue.
package config
