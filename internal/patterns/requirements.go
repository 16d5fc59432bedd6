package patterns

// Field names a piece of context a category needs before a confident
// answer is possible. Satisfaction rules are fixed per field and
// implemented by the gap analyzer.
type Field string

const (
	FieldErrorOutput    Field = "errorOutput"
	FieldProjectKind    Field = "projectKind"
	FieldPackageManager Field = "packageManager"
	FieldToolVersions   Field = "toolVersions"
	FieldRecentCommands Field = "recentCommands"
	FieldGitState       Field = "gitState"
	FieldConfigFiles    Field = "configFiles"
	FieldOSKind         Field = "osKind"
)

// Requirement describes what a category needs from the snapshot.
type Requirement struct {
	Required []Field
	Helpful  []Field
}

// Requirements is the fixed category→fields table used by gap analysis.
var Requirements = map[Category]Requirement{
	CategoryInstallation: {
		Required: []Field{FieldProjectKind, FieldPackageManager},
		Helpful:  []Field{FieldErrorOutput, FieldToolVersions},
	},
	CategoryConfiguration: {
		Required: []Field{FieldProjectKind},
		Helpful:  []Field{FieldConfigFiles, FieldOSKind},
	},
	CategoryBuild: {
		Required: []Field{FieldProjectKind, FieldErrorOutput},
		Helpful:  []Field{FieldToolVersions, FieldRecentCommands},
	},
	CategoryRuntime: {
		Required: []Field{FieldErrorOutput},
		Helpful:  []Field{FieldProjectKind, FieldRecentCommands},
	},
	CategoryNetwork: {
		Required: []Field{FieldErrorOutput},
		Helpful:  []Field{FieldRecentCommands, FieldOSKind},
	},
	CategoryPermissions: {
		Required: []Field{FieldErrorOutput, FieldOSKind},
		Helpful:  []Field{FieldRecentCommands},
	},
	CategoryGit: {
		Required: []Field{FieldGitState},
		Helpful:  []Field{FieldRecentCommands, FieldErrorOutput},
	},
	CategoryDocker: {
		Required: []Field{FieldErrorOutput},
		Helpful:  []Field{FieldConfigFiles, FieldToolVersions},
	},
	CategoryDeployment: {
		Required: []Field{FieldProjectKind},
		Helpful:  []Field{FieldConfigFiles, FieldGitState},
	},
	CategoryHowTo: {
		Helpful: []Field{FieldProjectKind, FieldOSKind},
	},
	CategoryOptimization: {
		Required: []Field{FieldProjectKind},
		Helpful:  []Field{FieldToolVersions, FieldRecentCommands},
	},
	CategoryDebugging: {
		Required: []Field{FieldErrorOutput},
		Helpful:  []Field{FieldRecentCommands, FieldProjectKind},
	},
}

// GapPrompts maps each field to the canned question asked when the
// field is missing from the snapshot.
var GapPrompts = map[Field]string{
	FieldErrorOutput:    "What is the exact error output you are seeing?",
	FieldProjectKind:    "What kind of project is this (node, python, go, ...)?",
	FieldPackageManager: "Which package manager are you using?",
	FieldToolVersions:   "Which versions of the relevant tools are installed?",
	FieldRecentCommands: "What commands did you run before this happened?",
	FieldGitState:       "Is this directory a git repository, and on which branch?",
	FieldConfigFiles:    "Which configuration files does the project have?",
	FieldOSKind:         "Which operating system are you on?",
}
