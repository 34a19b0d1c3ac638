package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Section names in the raw result document. Keys are looked up in this order.
const (
	sectionOpportunities = "opportunities"
	sectionAudits        = "audits"
)

// rawResults is the decoded top level of an audit report's raw results.
type rawResults struct {
	sections []map[string]any
}

// parseRawResults decodes the raw result document.
// An empty or null document yields no sections.
func parseRawResults(raw json.RawMessage) (*rawResults, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &rawResults{}, nil
	}

	var root any
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResults, err)
	}

	rootMap, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrMalformedResults, root)
	}

	r := &rawResults{}
	for _, name := range []string{sectionOpportunities, sectionAudits} {
		if section, ok := rootMap[name].(map[string]any); ok {
			r.sections = append(r.sections, section)
		}
	}
	return r, nil
}

// entry returns the audit entry for key from the first section that has it.
// Entries that are not objects are treated as absent.
func (r *rawResults) entry(key string) (auditEntry, bool) {
	for _, section := range r.sections {
		value, ok := section[key]
		if !ok {
			continue
		}
		obj, ok := value.(map[string]any)
		if !ok {
			return auditEntry{}, false
		}
		return newAuditEntry(key, obj), true
	}
	return auditEntry{}, false
}

// auditEntry is one audit result, e.g. "uses-webp-images".
type auditEntry struct {
	key      string
	score    float64
	hasScore bool
	items    []auditItem

	// overallSavingsMs is details.overallSavingsMs, used when items carry no timings.
	overallSavingsMs float64
}

func newAuditEntry(key string, obj map[string]any) auditEntry {
	e := auditEntry{key: key}
	e.score, e.hasScore = toFloat(obj["score"])

	details, ok := obj["details"].(map[string]any)
	if !ok {
		return e
	}
	e.overallSavingsMs, _ = toFloat(details["overallSavingsMs"])

	items, ok := details["items"].([]any)
	if !ok {
		return e
	}
	for _, raw := range items {
		if item, ok := raw.(map[string]any); ok {
			e.items = append(e.items, auditItem(item))
		}
	}
	return e
}

// wastedBytes sums the wastedBytes field over all items.
func (e auditEntry) wastedBytes() int64 {
	var total float64
	for _, item := range e.items {
		if v, ok := item.number("wastedBytes"); ok && v > 0 {
			total += v
		}
	}
	return int64(total)
}

// wastedMs sums the wastedMs field over all items, falling back to
// details.overallSavingsMs when no item has one.
func (e auditEntry) wastedMs() int64 {
	var total float64
	for _, item := range e.items {
		if v, ok := item.number("wastedMs"); ok && v > 0 {
			total += v
		}
	}
	if total == 0 && e.overallSavingsMs > 0 {
		total = e.overallSavingsMs
	}
	return int64(total)
}

// urls returns the url field of every item that has one, in order.
func (e auditEntry) urls() []string {
	urls := make([]string, 0, len(e.items))
	for _, item := range e.items {
		if u := item.url(); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// failing reports whether the entry is evidence of a problem: its score is
// below the passing score or its items report waste.
func (e auditEntry) failing(passingScore float64) bool {
	if e.hasScore && e.score < passingScore {
		return true
	}
	return e.wastedBytes() > 0 || e.wastedMs() > 0
}

// auditItem is one row of details.items.
type auditItem map[string]any

func (i auditItem) url() string {
	s, _ := i["url"].(string)
	return s
}

// number returns a numeric field. Numeric strings are accepted because some
// exporters stringify large values.
func (i auditItem) number(key string) (float64, bool) {
	return toFloat(i[key])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
