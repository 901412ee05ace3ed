package translit

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules/basic.yaml
var basicYAML []byte

// ErrNoRules is returned when a rule file defines neither direction.
var ErrNoRules = errors.New("translit: rule set is empty")

// RuleSet is the YAML form of a rule file.
type RuleSet struct {
	Name            string    `yaml:"name"`
	LegacyToUnicode Direction `yaml:"legacy_to_unicode"`
	UnicodeToLegacy Direction `yaml:"unicode_to_legacy"`
}

// Direction is applied as: pre rewrites in order, then the code-point map
// in a single simultaneous pass, then post rewrites in order.
type Direction struct {
	Pre  []Rewrite `yaml:"pre"`
	Map  []Pair    `yaml:"map"`
	Post []Rewrite `yaml:"post"`
}

// Rewrite is a regexp replacement; Replace may reference groups as ${n}.
type Rewrite struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// Pair maps one sequence to another. Earlier pairs win when several match
// at the same position, so longer sequences go first.
type Pair struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

func (d Direction) empty() bool {
	return len(d.Pre) == 0 && len(d.Map) == 0 && len(d.Post) == 0
}

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

type pass struct {
	pre  []rewrite
	rep  *strings.Replacer
	post []rewrite
}

func (p *pass) apply(s string) string {
	for _, r := range p.pre {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	if p.rep != nil {
		s = p.rep.Replace(s)
	}
	for _, r := range p.post {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// Rules is a compiled RuleSet. It is safe for concurrent use.
type Rules struct {
	name string
	l2u  pass
	u2l  pass
}

// Name returns the rule set name.
func (r *Rules) Name() string { return r.name }

func (r *Rules) LegacyToUnicode(text string) string { return r.l2u.apply(text) }

func (r *Rules) UnicodeToLegacy(text string) string { return r.u2l.apply(text) }

// Compile validates and compiles a RuleSet.
func Compile(rs RuleSet) (*Rules, error) {
	if rs.LegacyToUnicode.empty() && rs.UnicodeToLegacy.empty() {
		return nil, ErrNoRules
	}
	l2u, err := compileDirection(rs.LegacyToUnicode)
	if err != nil {
		return nil, fmt.Errorf("translit: %s legacy_to_unicode: %w", rs.Name, err)
	}
	u2l, err := compileDirection(rs.UnicodeToLegacy)
	if err != nil {
		return nil, fmt.Errorf("translit: %s unicode_to_legacy: %w", rs.Name, err)
	}
	return &Rules{name: rs.Name, l2u: l2u, u2l: u2l}, nil
}

func compileDirection(d Direction) (pass, error) {
	var p pass
	var err error
	if p.pre, err = compileRewrites(d.Pre); err != nil {
		return p, err
	}
	if p.post, err = compileRewrites(d.Post); err != nil {
		return p, err
	}
	if len(d.Map) > 0 {
		oldnew := make([]string, 0, 2*len(d.Map))
		for i, pr := range d.Map {
			if pr.From == "" {
				return p, fmt.Errorf("map[%d]: empty from", i)
			}
			oldnew = append(oldnew, pr.From, pr.To)
		}
		p.rep = strings.NewReplacer(oldnew...)
	}
	return p, nil
}

func compileRewrites(rws []Rewrite) ([]rewrite, error) {
	out := make([]rewrite, 0, len(rws))
	for i, rw := range rws {
		re, err := regexp.Compile(rw.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rewrite[%d]: %w", i, err)
		}
		out = append(out, rewrite{re: re, repl: rw.Replace})
	}
	return out, nil
}

// Load parses and compiles a YAML rule file.
func Load(r io.Reader) (*Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("translit: read rules: %w", err)
	}
	return parse(data)
}

// LoadFile reads a YAML rule file from disk.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("translit: read rules: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Rules, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("translit: parse rules: %w", err)
	}
	return Compile(rs)
}

// Default returns the embedded basic rule set.
var Default = sync.OnceValue(func() *Rules {
	r, err := parse(basicYAML)
	if err != nil {
		panic(err)
	}
	return r
})
