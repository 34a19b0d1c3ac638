// Package audit turns an auditing tool's raw results into typed issues.
//
// The Detector reads the "opportunities" and "audits" sections of an
// AuditReport, recognises the audit keys of four domains (images, caching
// headers, CSS and JavaScript), merges the evidence of each domain into a
// single Issue, assigns a severity from the lowest triggering score and
// returns the issues ordered from most to least severe.
//
// Detection is forgiving: missing sections, unknown keys, entries of the
// wrong shape and items without the expected fields are skipped. Only a
// raw result document that is not a JSON object is an error.
package audit
