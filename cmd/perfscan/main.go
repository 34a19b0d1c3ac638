// Package main provides the entry point for the perfscan CLI.
//
// perfscan reads automated page-audit reports, detects the performance
// issues they describe, and schedules or previews fixes for them.
//
// Usage:
//
//	perfscan detect audit.json
//	perfscan fix --dry-run audits/*.json
//	perfscan tasks list --website 7
//
// See --help for all available options.
package main

func main() {
	Execute()
}
