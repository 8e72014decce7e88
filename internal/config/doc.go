// Package config provides configuration structures and utilities for filingctl.
// It defines the service connection settings, refresh and template
// preferences, report format selection and where the operation journal lives.
package config
