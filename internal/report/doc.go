// Package report renders classification results for output.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//   - JSONWriter: structured JSON for tool integration
//
// Writers render a View: the results of one table, the expansion state of
// that table, and the optional ID and template columns. Expanded rows show
// the model output below the table; collapsed rows show only the summary.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
