// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from the file given with --config, else from
// ~/.config/capgate/config.cue (XDG on Linux, ~/Library/Application Support on
// macOS, %APPDATA% on Windows), else from ./capgate.cue. Without any file the
// built-in defaults describe the InEditorCpp editor module and its test module.
//
// Files are validated against the embedded CUE schema (config_schema.cue) before
// being merged into Viper; CAPGATE_* environment variables override scalar keys
// (CAPGATE_HOST_TARGET, CAPGATE_HOST_ENGINE_DIR, CAPGATE_HOST_PLUGIN_DIRS=a,b).
// Host and module paths undergo $VAR, ${VAR} and ~ expansion.
package config
