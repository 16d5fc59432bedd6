package patterns

import "regexp"

// PromptShapes is the closed set of trailing regexes the session
// arbiter uses to decide "the shell is ready for input". They are
// applied to the ANSI-stripped tail of the output ring.
var PromptShapes = []*regexp.Regexp{
	regexp.MustCompile(`\)\s*\$\s*$`),
	regexp.MustCompile(`\$\s*$`),
	regexp.MustCompile(`%\s*$`),
	regexp.MustCompile(`#\s*$`),
	regexp.MustCompile(`>\s*$`),
	regexp.MustCompile(`❯\s*$`),
	regexp.MustCompile(`➜\s*$`),
	regexp.MustCompile(`λ\s*$`),
	regexp.MustCompile(`⚡\s*$`),
}

// MatchesPromptShape reports whether the tail of s looks like a shell
// prompt awaiting input.
func MatchesPromptShape(s string) bool {
	for _, re := range PromptShapes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
