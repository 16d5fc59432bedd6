// Package patterns holds the static fingerprint tables used by the
// intent classifier, the environment probe and the session arbiter:
// category keyword rules, error signatures, per-category requirement
// fields, shell prompt shapes, project markers and toolchain probes.
// Everything in this package is immutable data.
package patterns

import "regexp"

// Category labels a user utterance. The set is closed; anything that
// does not score above the floor is CategoryUnknown.
type Category string

const (
	CategoryInstallation  Category = "installation"
	CategoryConfiguration Category = "configuration"
	CategoryBuild         Category = "build"
	CategoryRuntime       Category = "runtime"
	CategoryNetwork       Category = "network"
	CategoryPermissions   Category = "permissions"
	CategoryGit           Category = "git"
	CategoryDocker        Category = "docker"
	CategoryDeployment    Category = "deployment"
	CategoryHowTo         Category = "how-to"
	CategoryOptimization  Category = "optimization"
	CategoryDebugging     Category = "debugging"
	CategoryUnknown       Category = "unknown"
)

// Categories is the closed set of assignable categories, excluding unknown.
var Categories = []Category{
	CategoryInstallation,
	CategoryConfiguration,
	CategoryBuild,
	CategoryRuntime,
	CategoryNetwork,
	CategoryPermissions,
	CategoryGit,
	CategoryDocker,
	CategoryDeployment,
	CategoryHowTo,
	CategoryOptimization,
	CategoryDebugging,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	if c == CategoryUnknown {
		return true
	}
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// CategoryRule is a weighted keyword rule for one category.
type CategoryRule struct {
	Category Category
	Weight   float64
	Keywords []*regexp.Regexp
}

// CategoryRules drives the keyword scoring pass of the classifier.
// Rules are evaluated in order; each matching keyword adds the rule
// weight to the category score.
var CategoryRules = []CategoryRule{
	{
		Category: CategoryInstallation,
		Weight:   0.6,
		Keywords: compile(
			`(?i)\binstall(?:ing|ed)?\b`,
			`(?i)\b(?:npm|yarn|pnpm|pip3?|cargo|gem|brew|apt(?:-get)?)\s+(?:i\b|install|add)`,
			`(?i)\bnode_modules\b`,
			`(?i)\bdependenc(?:y|ies)\b`,
			`(?i)\bpackage(?:\.json)?\b`,
			`(?i)\bENOENT\b`,
			`(?i)\bmodule not found\b`,
			`(?i)\bcannot find module\b`,
		),
	},
	{
		Category: CategoryConfiguration,
		Weight:   0.5,
		Keywords: compile(
			`(?i)\bconfig(?:ure|uration)?\b`,
			`(?i)\bsettings?\b`,
			`(?i)\b\.?env(?:ironment)? variables?\b`,
			`(?i)\b(?:ts|js)config\b`,
			`(?i)\bdotfiles?\b`,
			`(?i)\b(?:yaml|toml|ini)\b`,
		),
	},
	{
		Category: CategoryBuild,
		Weight:   0.6,
		Keywords: compile(
			`(?i)\bbuild(?:ing)?\b`,
			`(?i)\bcompil(?:e|er|ing|ation)\b`,
			`(?i)\bwebpack|vite|rollup|esbuild\b`,
			`(?i)\bmake(?:file)?\b`,
			`(?i)\btsc\b`,
			`(?i)\bbundl(?:e|ing)\b`,
			`(?i)\bsyntax error\b`,
		),
	},
	{
		Category: CategoryRuntime,
		Weight:   0.6,
		Keywords: compile(
			`(?i)\bcrash(?:ed|ing)?\b`,
			`(?i)\b(?:uncaught|unhandled) (?:exception|rejection|error)\b`,
			`(?i)\bsegfault|segmentation fault\b`,
			`(?i)\bpanic\b`,
			`(?i)\bnull pointer|undefined is not\b`,
			`(?i)\bstack ?trace\b`,
			`(?i)\bexit(?:ed)? (?:with )?code\b`,
		),
	},
	{
		Category: CategoryNetwork,
		Weight:   0.6,
		Keywords: compile(
			`(?i)\bE?CONN(?:REFUSED|RESET)\b`,
			`(?i)\btimeout|timed? ?out\b`,
			`(?i)\bport\s+\d+\b`,
			`(?i)\bEADDRINUSE\b`,
			`(?i)\bdns\b`,
			`(?i)\bcurl|wget|http s?\b`,
			`(?i)\bcertificate|tls|ssl\b`,
			`(?i)\bproxy\b`,
		),
	},
	{
		Category: CategoryPermissions,
		Weight:   0.7,
		Keywords: compile(
			`(?i)\bpermission(?:s)? denied\b`,
			`(?i)\bEACCES\b`,
			`(?i)\bEPERM\b`,
			`(?i)\bsudo\b`,
			`(?i)\bchmod|chown\b`,
			`(?i)\bread-?only file system\b`,
			`(?i)\boperation not permitted\b`,
		),
	},
	{
		Category: CategoryGit,
		Weight:   0.7,
		Keywords: compile(
			`(?i)\bgit\b`,
			`(?i)\b(?:re)?base|merge conflict\b`,
			`(?i)\bcommit|push|pull|clone|checkout|stash\b`,
			`(?i)\bbranch(?:es)?\b`,
			`(?i)\bdetached head\b`,
			`(?i)\bremote\b`,
		),
	},
	{
		Category: CategoryDocker,
		Weight:   0.7,
		Keywords: compile(
			`(?i)\bdocker(?:file)?\b`,
			`(?i)\bcontainer(?:s)?\b`,
			`(?i)\bimage(?:s)?\b`,
			`(?i)\bcompose\b`,
			`(?i)\bkubernetes|k8s|kubectl\b`,
			`(?i)\bvolume|entrypoint\b`,
		),
	},
	{
		Category: CategoryDeployment,
		Weight:   0.6,
		Keywords: compile(
			`(?i)\bdeploy(?:ment|ing|ed)?\b`,
			`(?i)\bci/?cd\b`,
			`(?i)\bpipeline\b`,
			`(?i)\brelease\b`,
			`(?i)\bproduction|staging\b`,
			`(?i)\bterraform|ansible\b`,
			`(?i)\baws|gcp|azure|heroku|vercel|netlify\b`,
		),
	},
	{
		Category: CategoryHowTo,
		Weight:   0.4,
		Keywords: compile(
			`(?i)^how (?:do|can|to|would)\b`,
			`(?i)\bwhat(?:'s| is) the (?:command|way|best way)\b`,
			`(?i)\bhow do i\b`,
			`(?i)\bexample of\b`,
			`(?i)\bshow me\b`,
		),
	},
	{
		Category: CategoryOptimization,
		Weight:   0.5,
		Keywords: compile(
			`(?i)\bslow(?:er|ness)?\b`,
			`(?i)\boptimi[sz]e|performance\b`,
			`(?i)\bmemory (?:leak|usage)\b`,
			`(?i)\bcpu\b`,
			`(?i)\bspeed up|faster\b`,
			`(?i)\bprofil(?:e|ing)\b`,
		),
	},
	{
		Category: CategoryDebugging,
		Weight:   0.5,
		Keywords: compile(
			`(?i)\bdebug(?:ging|ger)?\b`,
			`(?i)\bwhy (?:is|does|did|won't|isn't)\b`,
			`(?i)\bnot working\b`,
			`(?i)\bbroken?\b`,
			`(?i)\bfails?\b`,
			`(?i)\binvestigate\b`,
			`(?i)\bbreakpoint\b`,
		),
	},
}

// ProjectAffinity maps a project kind to the categories its presence
// boosts during classification.
var ProjectAffinity = map[ProjectKind][]Category{
	ProjectNode:      {CategoryInstallation, CategoryBuild, CategoryRuntime},
	ProjectPython:    {CategoryInstallation, CategoryRuntime},
	ProjectRust:      {CategoryBuild, CategoryRuntime},
	ProjectGo:        {CategoryBuild, CategoryRuntime},
	ProjectRuby:      {CategoryInstallation, CategoryRuntime},
	ProjectJava:      {CategoryBuild, CategoryRuntime},
	ProjectDocker:    {CategoryDocker, CategoryDeployment},
	ProjectTerraform: {CategoryDeployment},
	ProjectMake:      {CategoryBuild},
}

func compile(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(e))
	}
	return res
}
