// Package report tallies case outcomes per suite and renders them: a console summary, and
// optionally a JSON document and an xlsx workbook.
package report
