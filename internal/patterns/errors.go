package patterns

import "regexp"

// ErrorPattern is a known error signature. Name identifies the pattern
// in snapshots and classifier signals; Categories lists the intent
// categories the signature is evidence for.
type ErrorPattern struct {
	Name       string
	Regexp     *regexp.Regexp
	Categories []Category
}

// ErrorPatterns is the closed error taxonomy, matched against both user
// utterances and recent terminal output. Order matters only for
// extraction: the first match names the error in a snapshot.
var ErrorPatterns = []ErrorPattern{
	{
		Name:       "module-not-found",
		Regexp:     regexp.MustCompile(`(?i)cannot find module|module not found|ModuleNotFoundError|no module named`),
		Categories: []Category{CategoryInstallation},
	},
	{
		Name:       "enoent",
		Regexp:     regexp.MustCompile(`(?i)\bENOENT\b|no such file or directory`),
		Categories: []Category{CategoryInstallation, CategoryConfiguration},
	},
	{
		Name:       "eacces",
		Regexp:     regexp.MustCompile(`(?i)\bEACCES\b|permission denied`),
		Categories: []Category{CategoryPermissions},
	},
	{
		Name:       "eperm",
		Regexp:     regexp.MustCompile(`(?i)\bEPERM\b|operation not permitted`),
		Categories: []Category{CategoryPermissions},
	},
	{
		Name:       "port-in-use",
		Regexp:     regexp.MustCompile(`(?i)\bEADDRINUSE\b|address already in use|port .{0,20}(?:in use|already)`),
		Categories: []Category{CategoryNetwork, CategoryRuntime},
	},
	{
		Name:       "connection-refused",
		Regexp:     regexp.MustCompile(`(?i)\bECONNREFUSED\b|connection refused`),
		Categories: []Category{CategoryNetwork},
	},
	{
		Name:       "connection-reset",
		Regexp:     regexp.MustCompile(`(?i)\bECONNRESET\b|connection reset by peer`),
		Categories: []Category{CategoryNetwork},
	},
	{
		Name:       "dns-failure",
		Regexp:     regexp.MustCompile(`(?i)\bENOTFOUND\b|could not resolve host|name or service not known`),
		Categories: []Category{CategoryNetwork},
	},
	{
		Name:       "npm-error",
		Regexp:     regexp.MustCompile(`npm ERR!|npm error`),
		Categories: []Category{CategoryInstallation},
	},
	{
		Name:       "version-mismatch",
		Regexp:     regexp.MustCompile(`(?i)requires? (?:node|python|go|ruby|java).{0,20}version|unsupported engine|incompatible`),
		Categories: []Category{CategoryInstallation, CategoryConfiguration},
	},
	{
		Name:       "syntax-error",
		Regexp:     regexp.MustCompile(`(?i)syntax ?error|unexpected token|unexpected identifier`),
		Categories: []Category{CategoryBuild, CategoryRuntime},
	},
	{
		Name:       "type-error",
		Regexp:     regexp.MustCompile(`(?i)type ?error|cannot read propert|undefined is not a function|nil pointer`),
		Categories: []Category{CategoryRuntime, CategoryDebugging},
	},
	{
		Name:       "compile-error",
		Regexp:     regexp.MustCompile(`(?i)compil(?:e|ation) (?:error|failed)|build failed|error\[E\d+\]`),
		Categories: []Category{CategoryBuild},
	},
	{
		Name:       "segfault",
		Regexp:     regexp.MustCompile(`(?i)segmentation fault|\bSIGSEGV\b|core dumped`),
		Categories: []Category{CategoryRuntime, CategoryDebugging},
	},
	{
		Name:       "oom",
		Regexp:     regexp.MustCompile(`(?i)out of memory|heap (?:limit|out of)|\bOOM\b|killed process`),
		Categories: []Category{CategoryRuntime, CategoryOptimization},
	},
	{
		Name:       "merge-conflict",
		Regexp:     regexp.MustCompile(`(?i)merge conflict|CONFLICT \(|fix conflicts`),
		Categories: []Category{CategoryGit},
	},
	{
		Name:       "git-rejected",
		Regexp:     regexp.MustCompile(`(?i)\[rejected\]|non-fast-forward|failed to push`),
		Categories: []Category{CategoryGit},
	},
	{
		Name:       "docker-daemon",
		Regexp:     regexp.MustCompile(`(?i)cannot connect to the docker daemon|docker daemon (?:is not|not) running`),
		Categories: []Category{CategoryDocker},
	},
	{
		Name:       "image-pull",
		Regexp:     regexp.MustCompile(`(?i)pull access denied|manifest (?:for .+ )?not found|ErrImagePull`),
		Categories: []Category{CategoryDocker, CategoryDeployment},
	},
	{
		Name:       "command-not-found",
		Regexp:     regexp.MustCompile(`(?i)command not found|not recognized as an internal or external command`),
		Categories: []Category{CategoryInstallation, CategoryConfiguration},
	},
	{
		Name:       "timeout",
		Regexp:     regexp.MustCompile(`(?i)\bETIMEDOUT\b|timed out|deadline exceeded`),
		Categories: []Category{CategoryNetwork, CategoryRuntime},
	},
	{
		Name:       "tls-certificate",
		Regexp:     regexp.MustCompile(`(?i)certificate (?:verify failed|has expired|signed by unknown)|x509`),
		Categories: []Category{CategoryNetwork},
	},
	{
		Name:       "disk-full",
		Regexp:     regexp.MustCompile(`(?i)no space left on device|\bENOSPC\b`),
		Categories: []Category{CategoryRuntime, CategoryPermissions},
	},
}

// MatchErrorPatterns returns the names of all error patterns matching s.
func MatchErrorPatterns(s string) []string {
	var names []string
	for _, p := range ErrorPatterns {
		if p.Regexp.MatchString(s) {
			names = append(names, p.Name)
		}
	}
	return names
}

// FirstErrorPattern returns the first pattern matching s, or nil.
func FirstErrorPattern(s string) *ErrorPattern {
	for i := range ErrorPatterns {
		if ErrorPatterns[i].Regexp.MatchString(s) {
			return &ErrorPatterns[i]
		}
	}
	return nil
}
