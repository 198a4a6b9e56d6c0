// Package rules loads and validates the alert rule files shipped with the
// exporter. The rules are Prometheus alerting rule groups; they are
// evaluated by an external engine, so validation here is the contract that
// keeps a bad rule file from reaching it.
package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// File is one alert rule file.
type File struct {
	Groups []Group `yaml:"groups"`
}

// Group is a named set of rules.
type Group struct {
	Name     string `yaml:"name"`
	Interval string `yaml:"interval,omitempty"`
	Rules    []Rule `yaml:"rules"`
}

// Rule is a single alerting rule.
type Rule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// Load reads and decodes one rule file. Unknown fields are an error so that
// typos like "exprs" don't silently drop a rule.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return &f, nil
}

var labelNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the structural rules the external alerting engine will
// enforce: non-empty unique group names, non-empty alert names and
// expressions, parseable for clauses, and well-formed label and annotation
// names.
func (f *File) Validate() error {
	if len(f.Groups) == 0 {
		return fmt.Errorf("no rule groups defined")
	}
	seen := make(map[string]bool)
	for gi, g := range f.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d: name must not be empty", gi)
		}
		if seen[g.Name] {
			return fmt.Errorf("group %q: duplicate group name", g.Name)
		}
		seen[g.Name] = true
		if g.Interval != "" {
			if _, err := ParseDuration(g.Interval); err != nil {
				return fmt.Errorf("group %q: invalid interval: %v", g.Name, err)
			}
		}
		if len(g.Rules) == 0 {
			return fmt.Errorf("group %q: no rules defined", g.Name)
		}
		for ri, r := range g.Rules {
			if err := r.validate(); err != nil {
				return fmt.Errorf("group %q: rule %d: %v", g.Name, ri, err)
			}
		}
	}
	return nil
}

func (r *Rule) validate() error {
	if r.Alert == "" {
		return fmt.Errorf("alert name must not be empty")
	}
	if !labelNameRE.MatchString(r.Alert) {
		return fmt.Errorf("invalid alert name %q", r.Alert)
	}
	if strings.TrimSpace(r.Expr) == "" {
		return fmt.Errorf("alert %q: expression must not be empty", r.Alert)
	}
	if err := checkBalanced(r.Expr); err != nil {
		return fmt.Errorf("alert %q: %v", r.Alert, err)
	}
	if r.For != "" {
		if _, err := ParseDuration(r.For); err != nil {
			return fmt.Errorf("alert %q: invalid for clause: %v", r.Alert, err)
		}
	}
	for name := range r.Labels {
		if !labelNameRE.MatchString(name) {
			return fmt.Errorf("alert %q: invalid label name %q", r.Alert, name)
		}
	}
	for name := range r.Annotations {
		if !labelNameRE.MatchString(name) {
			return fmt.Errorf("alert %q: invalid annotation name %q", r.Alert, name)
		}
	}
	return nil
}

// checkBalanced rejects expressions with unbalanced parens, brackets, or
// braces. It is a structural sanity check, not a query parser.
func checkBalanced(expr string) error {
	var stack []byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; c {
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return fmt.Errorf("unbalanced %q in expression", string(c))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return fmt.Errorf("unbalanced %q in expression", string(stack[len(stack)-1]))
	}
	return nil
}

var durationRE = regexp.MustCompile(`^(?:(\d+)y)?(?:(\d+)w)?(?:(\d+)d)?(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?(?:(\d+)ms)?$`)

// ParseDuration parses a Prometheus-style duration such as "5m", "1h30m" or
// "2d".
func ParseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	m := durationRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	matched := false
	var d time.Duration
	add := func(text string, unit time.Duration) error {
		if text == "" {
			return nil
		}
		matched = true
		n, err := strconv.Atoi(text)
		if err != nil {
			return err
		}
		d += time.Duration(n) * unit
		return nil
	}
	units := []time.Duration{
		365 * 24 * time.Hour, // y
		7 * 24 * time.Hour,   // w
		24 * time.Hour,       // d
		time.Hour,
		time.Minute,
		time.Second,
		time.Millisecond,
	}
	for i, unit := range units {
		if err := add(m[i+1], unit); err != nil {
			return 0, err
		}
	}
	if !matched {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// ValidateDir loads and validates every rule file in dir. It fails when dir
// holds no rule files, so an empty rules directory can't pass CI silently.
func ValidateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: no rule files found", dir)
	}
	sort.Strings(files)
	for _, path := range files {
		f, err := Load(path)
		if err != nil {
			return err
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%s: %v", path, err)
		}
	}
	return nil
}
