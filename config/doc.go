// Package config loads the YAML configuration for the roundtable CLI and
// validates it before any agent is constructed. A missing file is not an
// error; defaults plus ROUNDTABLE_* environment overrides apply instead, so
// the binary runs without any setup beyond provider credentials.
package config
