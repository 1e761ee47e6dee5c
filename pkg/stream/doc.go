// Package stream reads edge streams for the estimators.
//
// All sources speak the same line format: two vertex IDs per line separated
// by whitespace or a comma. Further columns (weights, timestamps) are
// ignored, as are blank lines and lines starting with '#' or '%', which
// covers SNAP and KONECT edge-list dumps.
package stream
