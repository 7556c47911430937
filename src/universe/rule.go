package universe

import (
	"fmt"
	"sort"
	"strings"
)

const maxNeighbours = 8

//Rule is the birth/survival table of a life-like automaton
//the zero value means "no rule given" and is replaced by DefaultRule by the grid
type Rule struct {
	notation string
	birth    [maxNeighbours + 1]bool
	survival [maxNeighbours + 1]bool
}

const conwayRule = "B3/S23"

//WellKnownRules is the catalogue of named life-like rules
var WellKnownRules = map[string]string{
	"replicator":         "B1357/S1357",
	"fredkin":            "B1357/S02468",
	"seeds":              "B2/S",
	"live-free-or-die":   "B2/S0",
	"life-without-death": "B3/S012345678",
	"flock":              "B3/S12",
	"mazectric":          "B3/S1234",
	"maze":               "B3/S12345",
	"conway":             conwayRule,
	"two-by-two":         "B36/S125",
	"highlife":           "B36/S23",
	"move":               "B368/S245",
	"day-and-night":      "B3678/S34678",
	"drylife":            "B37/S23",
	"pedestrian-life":    "B38/S23",
}

//DefaultRule returns Conway's B3/S23
func DefaultRule() Rule {
	r, _ := ParseRule(conwayRule)
	return r
}

//MustParseRule is ParseRule that panics on a malformed rule string
func MustParseRule(s string) Rule {
	r, err := ParseRule(s)
	if err != nil {
		panic(err)
	}
	return r
}

//ParseRule parses a rule in the B<digits>/S<digits> notation
func ParseRule(s string) (Rule, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Rule{}, &MalformedRuleError{Rule: s, Reason: "expected exactly one '/'"}
	}
	if !strings.HasPrefix(parts[0], "B") {
		return Rule{}, &MalformedRuleError{Rule: s, Reason: "birth part must start with 'B'"}
	}
	if !strings.HasPrefix(parts[1], "S") {
		return Rule{}, &MalformedRuleError{Rule: s, Reason: "survival part must start with 'S'"}
	}
	r := Rule{notation: s}
	if err := parseCounts(s, parts[0][1:], &r.birth); err != nil {
		return Rule{}, err
	}
	if err := parseCounts(s, parts[1][1:], &r.survival); err != nil {
		return Rule{}, err
	}
	r.notation = r.canonical()
	return r, nil
}

func parseCounts(rule string, digits string, into *[maxNeighbours + 1]bool) error {
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return &MalformedRuleError{Rule: rule, Reason: fmt.Sprintf("unexpected character %q", ch)}
		}
		n := int(ch - '0')
		if n > maxNeighbours {
			return &MalformedRuleError{Rule: rule, Reason: fmt.Sprintf("neighbour count %d is out of range 0-8", n)}
		}
		if into[n] {
			return &MalformedRuleError{Rule: rule, Reason: fmt.Sprintf("neighbour count %d is repeated", n)}
		}
		into[n] = true
	}
	return nil
}

//LookupRule resolves a catalogue name or a rule string, empty means the default rule
func LookupRule(nameOrNotation string) (Rule, error) {
	if nameOrNotation == "" {
		return DefaultRule(), nil
	}
	if notation, ok := WellKnownRules[strings.ToLower(nameOrNotation)]; ok {
		return ParseRule(notation)
	}
	return ParseRule(nameOrNotation)
}

//IsZero reports whether the rule was never parsed
func (r Rule) IsZero() bool {
	return r.notation == ""
}

//Next applies the table to the current state and the living neighbour count
func (r Rule) Next(state State, living int) State {
	if living < 0 || living > maxNeighbours {
		return Dead
	}
	if state == Alive {
		return State(r.survival[living])
	}
	return State(r.birth[living])
}

//BirthCounts returns the counts at which a dead cell becomes alive, ascending
func (r Rule) BirthCounts() []int {
	return counts(r.birth)
}

//SurvivalCounts returns the counts at which a live cell stays alive, ascending
func (r Rule) SurvivalCounts() []int {
	return counts(r.survival)
}

func (r Rule) String() string {
	if r.IsZero() {
		return conwayRule
	}
	return r.notation
}

func (r Rule) canonical() string {
	var b strings.Builder
	b.WriteByte('B')
	for _, n := range r.BirthCounts() {
		b.WriteByte(byte('0' + n))
	}
	b.WriteString("/S")
	for _, n := range r.SurvivalCounts() {
		b.WriteByte(byte('0' + n))
	}
	return b.String()
}

func counts(set [maxNeighbours + 1]bool) []int {
	res := make([]int, 0, len(set))
	for n, ok := range set {
		if ok {
			res = append(res, n)
		}
	}
	sort.Ints(res)
	return res
}
