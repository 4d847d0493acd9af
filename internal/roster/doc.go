// Package roster turns scraped roster lines into name/email records.
//
// Each line of the form "Full Name 20BCE10123" is parsed into a Student,
// checked against the snapshot of previously written records (keyed by the
// registration number at the end of the Name column), and turned into a
// Record whose email follows the first.reg@domain convention. The package is
// pure: it never touches the network or the filesystem, and every stage
// returns its result instead of accumulating into shared state.
package roster
