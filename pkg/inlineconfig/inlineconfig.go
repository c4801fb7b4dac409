// Package inlineconfig parses in-document directives (HTML comments) that
// enable, disable, or reconfigure rules for part or all of a file, in both
// the markdownlint-* and rumdl-* comment dialects.
package inlineconfig

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rumdl/rumdl/pkg/lintctx"
)

var directiveRe = regexp.MustCompile(
	`<!--\s*(?:markdownlint|rumdl)-(disable-file|enable-file|disable|enable|configure-file)\b([^>]*?)-->`,
)

// region is a line span over which a rule (or all rules, when RuleID=="")
// is disabled.
type region struct {
	ruleID    string
	startLine int
	endLine   int // inclusive; 0 means "still open, extends to EOF"
}

// Directives holds every suppression and option-override directive found in
// a document, indexed for fast per-(rule, line) lookup.
type Directives struct {
	fileDisableAll bool
	fileDisabled   map[string]bool
	regions        []region
	configOverride map[string]map[string]any

	// Malformed holds line numbers of configure-file directives whose JSON
	// payload failed to parse; they are ignored rather than fatal.
	Malformed []int
}

// Parse scans doc's lines for directive comments and builds a Directives
// index. Directives inside code blocks are inert (per the Lint Context's
// InCodeBlock annotation).
func Parse(doc *lintctx.Context) *Directives {
	d := &Directives{
		fileDisabled:   make(map[string]bool),
		configOverride: make(map[string]map[string]any),
	}

	open := make(map[string]int) // ruleID ("" == all) -> region start line

	for i, li := range doc.Lines {
		if li.InCodeBlock {
			continue
		}
		line := i + 1
		for _, m := range directiveRe.FindAllStringSubmatch(li.Text, -1) {
			kind := m[1]
			ids := normalizeIDs(m[2])

			switch kind {
			case "disable-file":
				if len(ids) == 0 {
					d.fileDisableAll = true
					continue
				}
				for _, id := range ids {
					d.fileDisabled[id] = true
				}
			case "enable-file":
				// File-scoped disables take precedence over later region
				// enables, but an explicit enable-file can still lift an
				// earlier disable-file (it is itself file-scoped).
				if len(ids) == 0 {
					d.fileDisableAll = false
					d.fileDisabled = make(map[string]bool)
					continue
				}
				for _, id := range ids {
					delete(d.fileDisabled, id)
				}
			case "disable":
				if len(ids) == 0 {
					if _, ok := open["*"]; !ok {
						open["*"] = line
					}
					continue
				}
				for _, id := range ids {
					if _, ok := open[id]; !ok {
						open[id] = line
					}
				}
			case "enable":
				if len(ids) == 0 {
					for id, start := range open {
						d.regions = append(d.regions, region{ruleID: normalizedRegionID(id), startLine: start, endLine: line})
					}
					open = make(map[string]int)
					continue
				}
				for _, id := range ids {
					if start, ok := open[id]; ok {
						d.regions = append(d.regions, region{ruleID: id, startLine: start, endLine: line})
						delete(open, id)
					}
				}
			case "configure-file":
				opts, ok := parseConfigureFile(m[2])
				if !ok {
					d.Malformed = append(d.Malformed, line)
					continue
				}
				for ruleID, ruleOpts := range opts {
					d.configOverride[baseRuleID(ruleID)] = ruleOpts
				}
			}
		}
	}

	// Any directives left open at EOF extend to the end of the file.
	for id, start := range open {
		d.regions = append(d.regions, region{ruleID: normalizedRegionID(id), startLine: start, endLine: 0})
	}

	return d
}

// Suppressed reports whether ruleID's warning at the given 1-based line is
// suppressed by an in-document directive. MDxxx-variant ids are matched
// against their base MDxxx id.
func (d *Directives) Suppressed(ruleID string, line int) bool {
	base := baseRuleID(ruleID)

	if d.fileDisableAll || d.fileDisabled[base] {
		return true
	}

	for _, r := range d.regions {
		if r.ruleID != "" && r.ruleID != base {
			continue
		}
		if line < r.startLine {
			continue
		}
		if r.endLine != 0 && line > r.endLine {
			continue
		}
		return true
	}

	return false
}

// Options returns the file-scoped option overrides for ruleID declared by a
// configure-file directive, if any.
func (d *Directives) Options(ruleID string) (map[string]any, bool) {
	opts, ok := d.configOverride[baseRuleID(ruleID)]
	return opts, ok
}

func normalizedRegionID(id string) string {
	if id == "*" {
		return ""
	}
	return id
}

// normalizeIDs splits a directive's trailing argument text into canonical
// rule ids; a blank argument list means "all rules" (represented as nil).
func normalizeIDs(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",")
		if f == "" {
			continue
		}
		ids = append(ids, strings.ToUpper(baseRuleID(f)))
	}
	return ids
}

// baseRuleID strips a "-variant" suffix from an MDxxx-variant id, e.g.
// "MD013-long" -> "MD013".
func baseRuleID(id string) string {
	upper := strings.ToUpper(id)
	if idx := strings.Index(upper, "-"); idx > 0 && isMDNumber(upper[:idx]) {
		return upper[:idx]
	}
	return upper
}

func isMDNumber(s string) bool {
	if !strings.HasPrefix(s, "MD") || len(s) <= 2 {
		return false
	}
	_, err := strconv.Atoi(s[2:])
	return err == nil
}

// parseConfigureFile extracts and parses the JSON payload of a
// configure-file directive's comment body. Malformed JSON returns ok=false
// so the caller can warn without failing the lint run.
func parseConfigureFile(body string) (map[string]map[string]any, bool) {
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < 0 || end < start {
		return nil, false
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return nil, false
	}
	return raw, true
}
