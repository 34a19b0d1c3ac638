// Package report renders run reports and optimization tasks.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text output for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for sharing and pull requests
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
