package lint

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// Severity ranks an issue. Errors make a template unusable by consumers;
// warnings flag likely authoring mistakes.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding with its JSON pointer into the exported document.
type Issue struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// Result captures lint outcomes. Valid is false when any error was found.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors returns only error-level issues.
func (r Result) Errors() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// Option configures a Linter.
type Option func(*Linter)

// WithPolicy replaces the sanitizer used to detect markup in labels and
// titles.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(l *Linter) {
		if policy != nil {
			l.policy = policy
		}
	}
}

// Linter checks templates for the problems the engine accepts
// while editing: empty or duplicate names, unusable rules and empty choice
// lists.
type Linter struct {
	policy *bluemonday.Policy
}

// New returns a Linter using bluemonday's strict policy.
func New(options ...Option) *Linter {
	l := &Linter{policy: bluemonday.StrictPolicy()}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Lint runs every check with the default linter.
func Lint(tmpl model.Template) Result {
	return New().Lint(tmpl)
}

// Lint runs every check against tmpl.
func (l *Linter) Lint(tmpl model.Template) Result {
	c := &collector{}
	if len(tmpl.Pages) == 0 {
		c.warn("/pages", "", "template has no pages")
	}

	seen := make(map[string]string)
	for pageIdx, page := range tmpl.Pages {
		pagePath := fmt.Sprintf("/pages/%d", pageIdx)
		if strings.TrimSpace(page.Title) == "" {
			c.warn(pagePath+"/title", "", "page title is empty")
		} else if l.hasMarkup(page.Title) {
			c.warn(pagePath+"/title", "", "page title contains markup")
		}
		if len(page.Fields) == 0 {
			c.warn(pagePath+"/fields", "", "page has no fields")
		}

		for fieldIdx, field := range page.Fields {
			fieldPath := fmt.Sprintf("%s/fields/%d", pagePath, fieldIdx)
			l.lintField(c, fieldPath, field, seen)
		}
	}

	return Result{Valid: !c.hasErrors, Issues: c.issues}
}

func (l *Linter) lintField(c *collector, path string, field model.Field, seen map[string]string) {
	name := strings.TrimSpace(field.Name)
	switch {
	case name == "":
		c.error(path+"/name", "", "field name is required")
	case seen[name] != "":
		c.error(path+"/name", name, fmt.Sprintf("field name duplicates %s", seen[name]))
	default:
		seen[name] = path
	}

	if strings.TrimSpace(field.Label) == "" {
		c.warn(path+"/label", name, "field label is empty")
	} else if l.hasMarkup(field.Label) {
		c.warn(path+"/label", name, "field label contains markup")
	}

	if !field.Type.Valid() {
		c.error(path+"/type", name, fmt.Sprintf("unknown field type %q", field.Type))
		return
	}

	switch v := field.Validation.(type) {
	case model.TextValidation:
		if pattern, ok := v.Pattern(); ok {
			if _, err := regexp.Compile(pattern); err != nil {
				c.error(path+"/validation/regex", name, fmt.Sprintf("regex does not compile: %v", err))
			}
		} else if _, isString := v.Regex.(string); v.Regex != nil && !isString {
			c.error(path+"/validation/regex", name, fmt.Sprintf("regex must be a string, got %v", v.Regex))
		}
	case model.NumberValidation:
		lo, loOK := v.MinInt()
		hi, hiOK := v.MaxInt()
		if v.Min != nil && !loOK {
			c.error(path+"/validation/min", name, fmt.Sprintf("min %v is not an integer", v.Min))
		}
		if v.Max != nil && !hiOK {
			c.error(path+"/validation/max", name, fmt.Sprintf("max %v is not an integer", v.Max))
		}
		if loOK && hiOK && lo > hi {
			c.error(path+"/validation", name, fmt.Sprintf("min %d is greater than max %d", lo, hi))
		}
	}

	if field.Type.UsesOptions() {
		lintList(c, path+"/options", name, field.Options, "option", nil)
	}
	if field.Type.UsesAccept() {
		lintList(c, path+"/accept", name, field.Accept, "file type", checkExtension)
	}
}

func lintList(c *collector, path, name string, items []string, noun string, check func(string) string) {
	values := 0
	seen := make(map[string]int)
	for idx, item := range items {
		itemPath := fmt.Sprintf("%s/%d", path, idx)
		value := strings.TrimSpace(item)
		if value == "" {
			c.warn(itemPath, name, fmt.Sprintf("empty %s slot", noun))
			continue
		}
		values++
		if prev, ok := seen[value]; ok {
			c.warn(itemPath, name, fmt.Sprintf("%s %q repeats index %d", noun, value, prev))
			continue
		}
		seen[value] = idx
		if check != nil {
			if msg := check(value); msg != "" {
				c.warn(itemPath, name, msg)
			}
		}
	}
	if values == 0 {
		c.error(path, name, fmt.Sprintf("at least one %s is required", noun))
	}
}

func checkExtension(value string) string {
	if !strings.HasPrefix(value, ".") || len(value) < 2 {
		return fmt.Sprintf("file type %q should look like .pdf", value)
	}
	if strings.ContainsAny(value[1:], " ./\\") {
		return fmt.Sprintf("file type %q is not a single extension", value)
	}
	return ""
}

func (l *Linter) hasMarkup(text string) bool {
	return html.UnescapeString(l.policy.Sanitize(text)) != text
}

type collector struct {
	issues    []Issue
	hasErrors bool
}

func (c *collector) error(path, field, message string) {
	c.hasErrors = true
	c.issues = append(c.issues, Issue{Severity: SeverityError, Path: path, Field: field, Message: message})
}

func (c *collector) warn(path, field, message string) {
	c.issues = append(c.issues, Issue{Severity: SeverityWarning, Path: path, Field: field, Message: message})
}
