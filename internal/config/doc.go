// Package config provides configuration structures and utilities for perfscan.
// It defines the detection thresholds, estimation constants, storage location
// and report preferences, and loads overrides from the .perfscan YAML file.
package config
