// Package config provides configuration loading for goapflow.
//
// Settings come from defaults, an optional YAML file, and environment
// variables, in that precedence order.
package config
