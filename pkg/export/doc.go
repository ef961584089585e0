// Package export writes search and channel results to places other tools
// can pick them up: appended link lists, per-channel long/short files,
// thumbnail images and a Redis list.
package export
