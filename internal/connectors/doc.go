// Package connectors reads source files from disk into domain tables.
//
// Each loader handles a family of file types (workbooks, delimited text)
// and hands the raw cell grid to the grid package, which finds the header
// row and builds the table. The Factory picks a loader by file extension.
package connectors
