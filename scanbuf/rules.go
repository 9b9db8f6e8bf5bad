package scanbuf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PasteMarker stands in for a paste combination until the flush can
// resolve it against the target's field value.
const PasteMarker = "@CtrlV@"

var tokenRe = regexp.MustCompile(`#_(\d+)_#`)

// Rule is one ordered substitution applied to the raw token buffer.
// Exactly one of Replace or Func is used; Func wins when set. Replace may
// refer to capture groups as $1 or ${name}.
type Rule struct {
	Pattern *regexp.Regexp
	Replace string
	Func    func(groups []string) string
	Once    bool // replace only the first match
}

func (r Rule) apply(s string) string {
	if r.Pattern == nil {
		return s
	}
	if r.Once {
		loc := r.Pattern.FindStringSubmatchIndex(s)
		if loc == nil {
			return s
		}
		return s[:loc[0]] + r.replacement(s, loc) + s[loc[1]:]
	}
	if r.Func == nil {
		return r.Pattern.ReplaceAllString(s, r.Replace)
	}
	var b strings.Builder
	last := 0
	for _, loc := range r.Pattern.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:loc[0]])
		b.WriteString(r.replacement(s, loc))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func (r Rule) replacement(s string, loc []int) string {
	if r.Func == nil {
		return string(r.Pattern.ExpandString(nil, r.Replace, s, loc))
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return r.Func(groups)
}

// Rules is an immutable ordered rule list.
type Rules struct {
	list []Rule
}

// NewRules copies rules into an immutable list.
func NewRules(rules ...Rule) Rules {
	return Rules{list: append([]Rule(nil), rules...)}
}

// Len returns the number of rules.
func (rs Rules) Len() int { return len(rs.list) }

// Apply runs every rule in order, each one seeing the previous one's output.
func (rs Rules) Apply(s string) string {
	for _, r := range rs.list {
		s = r.apply(s)
	}
	return s
}

// Token encodes one key code the way it is stored in a buffer.
func Token(code int) string {
	return "#_" + strconv.Itoa(code) + "_#"
}

// DecodeToken is the catch-all rule function: it turns the digits captured
// from a token back into the character they encode.
func DecodeToken(groups []string) string {
	if len(groups) < 2 {
		return ""
	}
	code, err := strconv.Atoi(groups[1])
	if err != nil {
		return ""
	}
	return Decode(code)
}

func literal(tok string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(tok))
}

// DefaultRules returns the built-in rule list. Order matters: the key
// combinations must be matched before the generic token decoder runs.
func DefaultRules() Rules {
	return NewRules(
		// Shift+Backslash, both release orders.
		Rule{Pattern: literal(Token(16) + Token(220)), Replace: "|", Once: true},
		Rule{Pattern: literal(Token(220) + Token(16)), Replace: "|", Once: true},
		// Ctrl+M
		Rule{Pattern: literal(Token(17) + Token(77)), Replace: " "},
		// Ctrl+V
		Rule{Pattern: literal(Token(17) + Token(86)), Replace: PasteMarker},
		Rule{Pattern: literal(Token(86) + Token(17)), Replace: PasteMarker},
		// Shift+Insert
		Rule{Pattern: literal(Token(16) + Token(45)), Replace: PasteMarker},
		Rule{Pattern: literal(Token(45) + Token(16)), Replace: PasteMarker},
		// Enter
		Rule{Pattern: literal(Token(13)), Replace: " "},
		// NumLock toggles sent by some scanners are ignored.
		Rule{Pattern: literal(Token(144)), Replace: ""},
		Rule{Pattern: tokenRe, Func: DecodeToken},
	)
}

// RuleConfig is the file form of a Rule.
type RuleConfig struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
	Decode  bool   `yaml:"decode"` // decode the first capture group as a key code
	Once    bool   `yaml:"once"`
}

// CompileRules builds a rule list from configuration. An empty list yields
// the defaults.
func CompileRules(cfgs []RuleConfig) (Rules, error) {
	if len(cfgs) == 0 {
		return DefaultRules(), nil
	}
	rules := make([]Rule, 0, len(cfgs))
	for i, c := range cfgs {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return Rules{}, fmt.Errorf("rule %d: compile %q: %w", i, c.Pattern, err)
		}
		r := Rule{Pattern: re, Replace: c.Replace, Once: c.Once}
		if c.Decode {
			if re.NumSubexp() < 1 {
				return Rules{}, fmt.Errorf("rule %d: decode needs a capture group in %q", i, c.Pattern)
			}
			r.Func = DecodeToken
		}
		rules = append(rules, r)
	}
	return NewRules(rules...), nil
}
