// Package cli implements the command-line interface for classroom-emails.
//
// The cli package provides the Cobra-based commands that tie the pieces
// together: load configuration, read the existing output file, collect roster
// lines from the browser or from saved files, run them through the roster
// transformer and write the merged result back. A summary of the run is
// printed as text or JSON.
package cli
