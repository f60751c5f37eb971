// Package seed loads the learning catalog from an embedded YAML file and
// writes it into an empty database at startup.
package seed
