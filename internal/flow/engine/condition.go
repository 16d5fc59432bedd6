package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// The condition sub-language is deliberately restricted: an ordered,
// closed list of patterns is tried and the first match wins, so
// evaluation is total and bounded. A general expression parser must
// never be introduced here; together with quoting of interpolated
// strings this closes off code injection through node data.

var (
	equalityRe    = regexp.MustCompile(`^(.*?)\s*(===|!==|==|!=)\s*(.*)$`)
	orderingRe    = regexp.MustCompile(`^(.*?)\s*(>=|<=|>|<)\s*(.*)$`)
	containmentRe = regexp.MustCompile(`^(.+?)\.(includes|startsWith|endsWith)\(\s*(?:"([^"]*)"|'([^']*)')\s*\)\s*$`)
	lengthRe      = regexp.MustCompile(`^(.+?)\.length\s*(===|!==|==|!=|>=|<=|>|<)\s*(\d+)\s*$`)
)

// EvaluateCondition evaluates a branch condition after interpolation.
// It always returns a verdict; inputs that fit no comparison pattern
// fall through to bare truthiness.
func EvaluateCondition(condition string) bool {
	cond := strings.TrimSpace(condition)
	if cond == "" {
		return false
	}

	// Length comparisons are matched before the generic binary forms:
	// the bare-token grammar would otherwise swallow `x.length > 3` as
	// an ordering over the literal string "x.length".
	if m := lengthRe.FindStringSubmatch(cond); m != nil {
		length := len(parseOperand(m[1]).text)
		want, err := strconv.Atoi(m[3])
		if err != nil {
			return false
		}
		switch m[2] {
		case "===", "==":
			return length == want
		case "!==", "!=":
			return length != want
		case ">":
			return length > want
		case "<":
			return length < want
		case ">=":
			return length >= want
		case "<=":
			return length <= want
		}
	}

	if m := equalityRe.FindStringSubmatch(cond); m != nil && m[1] != "" && m[3] != "" {
		lhs, rhs := parseOperand(m[1]), parseOperand(m[3])
		eq := operandsEqual(lhs, rhs)
		if m[2] == "!==" || m[2] == "!=" {
			return !eq
		}
		return eq
	}

	if m := orderingRe.FindStringSubmatch(cond); m != nil && m[1] != "" && m[3] != "" {
		lhs, rhs := parseOperand(m[1]), parseOperand(m[3])
		cmp := compareOperands(lhs, rhs)
		switch m[2] {
		case ">":
			return cmp > 0
		case "<":
			return cmp < 0
		case ">=":
			return cmp >= 0
		case "<=":
			return cmp <= 0
		}
	}

	if m := containmentRe.FindStringSubmatch(cond); m != nil {
		subject := parseOperand(m[1]).text
		needle := m[3]
		if needle == "" {
			needle = m[4]
		}
		switch m[2] {
		case "includes":
			return strings.Contains(subject, needle)
		case "startsWith":
			return strings.HasPrefix(subject, needle)
		case "endsWith":
			return strings.HasSuffix(subject, needle)
		}
	}

	return truthy(parseOperand(cond))
}

// operand is a parsed LHS/RHS/EXPR value: a quoted string, a number, a
// boolean, null, or a bare token treated as a string.
type operand struct {
	text   string
	num    float64
	isNum  bool
	isNull bool
}

func parseOperand(raw string) operand {
	s := strings.TrimSpace(raw)

	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return operand{text: s[1 : len(s)-1]}
		}
	}

	switch s {
	case "true":
		return operand{text: "true"}
	case "false":
		return operand{text: "false"}
	case "null", "undefined":
		return operand{text: "", isNull: true}
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return operand{text: s, num: n, isNum: true}
	}
	return operand{text: s}
}

// operandsEqual compares numerically when both sides parse as numbers,
// otherwise by string equality.
func operandsEqual(a, b operand) bool {
	if a.isNull || b.isNull {
		return a.isNull == b.isNull
	}
	if a.isNum && b.isNum {
		return a.num == b.num
	}
	return a.text == b.text
}

// compareOperands orders numerically when both sides are numbers, else
// lexicographically.
func compareOperands(a, b operand) int {
	if a.isNum && b.isNum {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.text, b.text)
}

func truthy(v operand) bool {
	if v.isNull {
		return false
	}
	if v.isNum {
		return v.num != 0
	}
	switch v.text {
	case "", "false", "0", "null", "undefined":
		return false
	default:
		return true
	}
}
