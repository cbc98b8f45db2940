// Package config loads and validates cue player configuration.
//
// It supplies defaults for the list layout, the OSC control surface and
// logging, reads TOML files, and can watch a file so runtime settings such as
// auto-continue follow edits without a restart.
package config
