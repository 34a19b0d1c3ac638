package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IssueType identifies the kind of performance problem an Issue describes.
// Detection only ever produces the four auto-fixable kinds; other values
// reach the engine from callers that build issues themselves.
type IssueType string

const (
	// IssueImageOptimization covers images that could be served in a modern
	// format or recompressed.
	IssueImageOptimization IssueType = "image_optimization"

	// IssueCachingHeaders covers static resources served without a long
	// cache lifetime.
	IssueCachingHeaders IssueType = "caching_headers"

	// IssueCSSOptimization covers render-blocking and unminified stylesheets.
	IssueCSSOptimization IssueType = "css_optimization"

	// IssueJavaScriptOptimization covers unminified scripts and long script
	// bootup time.
	IssueJavaScriptOptimization IssueType = "javascript_optimization"

	// IssueCustomFonts covers web fonts that delay text rendering.
	// There is no automated remediation for it.
	IssueCustomFonts IssueType = "custom_fonts"
)

// IssueTypeInfo describes the static capabilities of an issue type.
type IssueTypeInfo struct {
	// Title is the display name. Empty means the name is derived from the type.
	Title string

	// AutoFixable reports whether the engine has a remediation for the type.
	AutoFixable bool

	// Recommendation is shown next to the issue in reports.
	Recommendation string
}

// issueTypeInfoMapping is the capability table consulted when an issue
// does not carry an explicit auto_fixable flag.
var issueTypeInfoMapping = map[IssueType]IssueTypeInfo{
	IssueImageOptimization: {
		AutoFixable:    true,
		Recommendation: "Serve images as WebP/AVIF and recompress oversized JPEG and PNG files.",
	},
	IssueCachingHeaders: {
		AutoFixable:    true,
		Recommendation: "Serve static assets with a long Cache-Control max-age.",
	},
	IssueCSSOptimization: {
		Title:          "CSS Optimization",
		AutoFixable:    true,
		Recommendation: "Minify stylesheets and inline or defer render-blocking CSS.",
	},
	IssueJavaScriptOptimization: {
		Title:          "JavaScript Optimization",
		AutoFixable:    true,
		Recommendation: "Minify scripts and defer the ones with long bootup time.",
	},
	IssueCustomFonts: {
		AutoFixable:    false,
		Recommendation: "Preload critical fonts and use font-display: swap.",
	},
}

// GetIssueTypeInfo returns the capability entry for an issue type.
// Unknown types are reported as not auto-fixable.
func GetIssueTypeInfo(t IssueType) IssueTypeInfo {
	if info, ok := issueTypeInfoMapping[t]; ok {
		return info
	}
	return IssueTypeInfo{
		AutoFixable:    false,
		Recommendation: "No automated remediation available. Review manually.",
	}
}

// Label returns a human-readable name such as "Image Optimization".
func (t IssueType) Label() string {
	if info, ok := issueTypeInfoMapping[t]; ok && info.Title != "" {
		return info.Title
	}
	words := strings.ReplaceAll(string(t), "_", " ")
	return cases.Title(language.English).String(words)
}

// Issue is a performance problem detected in an audit report.
// Issues are values: detection builds new ones instead of patching old ones.
// Detected issues always carry AutoFixable; only issues built by callers
// fall back to the capability table.
type Issue struct {
	// Type is the issue kind.
	Type IssueType

	// Severity is derived from the lowest triggering audit score.
	Severity Severity

	// Impact is a one-line human-readable description of the cost.
	Impact string

	// AutoFixable, when set, overrides the capability table.
	AutoFixable *bool

	// WebsiteID is the website that owns the audited page.
	WebsiteID int64

	// Data is the type-specific payload. It is nil for malformed issues.
	Data IssueData
}

// IssueData is the closed set of type-specific issue payloads.
// The unexported marker keeps the set limited to this package.
type IssueData interface {
	// IssueType returns the issue type the payload belongs to.
	IssueType() IssueType

	isIssueData()
}

// ImageOptimizationData is the payload of an image_optimization issue.
type ImageOptimizationData struct {
	AffectedImages []string `json:"affected_images"`
	TotalSavings   int64    `json:"total_savings"`
	WastedMs       int64    `json:"wasted_ms,omitempty"`
}

// CachingHeadersData is the payload of a caching_headers issue.
type CachingHeadersData struct {
	MissingCacheResources []string `json:"missing_cache_resources"`
	ResourceCount         int      `json:"resource_count"`
	RecommendedTTL        int64    `json:"recommended_ttl"`
}

// CSSOptimizationData is the payload of a css_optimization issue.
// The render-blocking and unminified halves come from separate audits and
// either may be zero.
type CSSOptimizationData struct {
	RenderBlockingCount int      `json:"render_blocking_count"`
	RenderBlockingMs    int64    `json:"render_blocking_ms,omitempty"`
	PotentialSavings    int64    `json:"potential_savings"`
	UnminifiedCount     int      `json:"unminified_count"`
	UnminifiedFiles     []string `json:"unminified_files,omitempty"`
}

// JavaScriptOptimizationData is the payload of a javascript_optimization issue.
// Bootup figures are informational.
type JavaScriptOptimizationData struct {
	Files        []string `json:"files"`
	TotalSavings int64    `json:"total_savings"`
	WastedMs     int64    `json:"wasted_ms,omitempty"`
	BootupTimeMs int64    `json:"bootup_time_ms,omitempty"`
	SlowScripts  []string `json:"slow_scripts,omitempty"`
}

// UnknownData carries the raw fields of an issue type the engine does not model.
type UnknownData struct {
	Type   IssueType      `json:"-"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (*ImageOptimizationData) IssueType() IssueType      { return IssueImageOptimization }
func (*CachingHeadersData) IssueType() IssueType         { return IssueCachingHeaders }
func (*CSSOptimizationData) IssueType() IssueType        { return IssueCSSOptimization }
func (*JavaScriptOptimizationData) IssueType() IssueType { return IssueJavaScriptOptimization }
func (d *UnknownData) IssueType() IssueType              { return d.Type }

func (*ImageOptimizationData) isIssueData()      {}
func (*CachingHeadersData) isIssueData()         {}
func (*CSSOptimizationData) isIssueData()        {}
func (*JavaScriptOptimizationData) isIssueData() {}
func (*UnknownData) isIssueData()                {}

// HasTargets reports whether a payload names anything a remediation could
// act on: images, resources, stylesheets or scripts. Audits can fail on
// score alone, leaving a payload with nothing to process.
func HasTargets(d IssueData) bool {
	switch d := d.(type) {
	case *ImageOptimizationData:
		return len(d.AffectedImages) > 0
	case *CachingHeadersData:
		return d.ResourceCount > 0
	case *CSSOptimizationData:
		return len(d.UnminifiedFiles) > 0 || d.RenderBlockingCount > 0
	case *JavaScriptOptimizationData:
		return len(d.Files) > 0 || len(d.SlowScripts) > 0
	default:
		return false
	}
}

// Bool returns a pointer to v. It is used to set Issue.AutoFixable.
func Bool(v bool) *bool {
	return &v
}

// issueJSON is the wire form of an Issue.
type issueJSON struct {
	Type        IssueType       `json:"type"`
	Severity    Severity        `json:"severity"`
	Impact      string          `json:"impact"`
	AutoFixable *bool           `json:"auto_fixable,omitempty"`
	WebsiteID   int64           `json:"website_id,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (i Issue) MarshalJSON() ([]byte, error) {
	wire := issueJSON{
		Type:        i.Type,
		Severity:    i.Severity,
		Impact:      i.Impact,
		AutoFixable: i.AutoFixable,
		WebsiteID:   i.WebsiteID,
	}

	if i.Data != nil {
		var payload any = i.Data
		if unknown, ok := i.Data.(*UnknownData); ok {
			payload = unknown.Fields
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s data: %w", i.Type, err)
		}
		wire.Data = data
	}

	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
// The data payload is decoded into the variant matching the type field.
func (i *Issue) UnmarshalJSON(b []byte) error {
	var wire issueJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	*i = Issue{
		Type:        wire.Type,
		Severity:    wire.Severity,
		Impact:      wire.Impact,
		AutoFixable: wire.AutoFixable,
		WebsiteID:   wire.WebsiteID,
	}

	if len(wire.Data) == 0 || string(wire.Data) == "null" {
		return nil
	}

	var data IssueData
	switch wire.Type {
	case IssueImageOptimization:
		data = &ImageOptimizationData{}
	case IssueCachingHeaders:
		data = &CachingHeadersData{}
	case IssueCSSOptimization:
		data = &CSSOptimizationData{}
	case IssueJavaScriptOptimization:
		data = &JavaScriptOptimizationData{}
	default:
		unknown := &UnknownData{Type: wire.Type}
		if err := json.Unmarshal(wire.Data, &unknown.Fields); err != nil {
			return fmt.Errorf("failed to parse %s data: %w", wire.Type, err)
		}
		i.Data = unknown
		return nil
	}

	if err := json.Unmarshal(wire.Data, data); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", wire.Type, err)
	}
	i.Data = data
	return nil
}
