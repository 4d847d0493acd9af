// Package storage provides CSV persistence for generated roster records.
//
// The output file doubles as the dedup database: it is read once at the start
// of a run and rewritten once, in full, at the end. Files use a Name,Email
// header and standard CSV quoting. Records can also be exported to an Excel
// workbook for sharing.
package storage
