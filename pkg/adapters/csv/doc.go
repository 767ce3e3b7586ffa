// Package csv reads the input table and reads and writes stage tables as CSV files.
//
// The input table must carry the columns of schema.Input(); optional columns
// (site, cycle, n_frames) may be omitted. Stage tables are plain CSV with a
// header row, written in the stage's column order.
package csv
