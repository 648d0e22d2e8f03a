// Package config provides configuration structures and utilities for
// linkharvest. It defines crawl limits, politeness settings, output format
// selection, and the optional YAML configuration file with per-site
// overrides.
package config
