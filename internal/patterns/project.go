package patterns

// ProjectKind identifies the kind of project found in a directory.
type ProjectKind string

const (
	ProjectNode      ProjectKind = "node"
	ProjectPython    ProjectKind = "python"
	ProjectRust      ProjectKind = "rust"
	ProjectGo        ProjectKind = "go"
	ProjectRuby      ProjectKind = "ruby"
	ProjectJava      ProjectKind = "java"
	ProjectDocker    ProjectKind = "docker"
	ProjectTerraform ProjectKind = "terraform"
	ProjectMake      ProjectKind = "make"
	ProjectNone      ProjectKind = "none"
)

// ProjectMarker maps a marker file to the project kind and package
// manager it implies.
type ProjectMarker struct {
	File           string
	Kind           ProjectKind
	PackageManager string
	Language       string
}

// ProjectMarkers is scanned in order; the first marker whose file
// exists in the working directory wins.
var ProjectMarkers = []ProjectMarker{
	{File: "package.json", Kind: ProjectNode, PackageManager: "npm", Language: "javascript"},
	{File: "yarn.lock", Kind: ProjectNode, PackageManager: "yarn", Language: "javascript"},
	{File: "pnpm-lock.yaml", Kind: ProjectNode, PackageManager: "pnpm", Language: "javascript"},
	{File: "requirements.txt", Kind: ProjectPython, PackageManager: "pip", Language: "python"},
	{File: "pyproject.toml", Kind: ProjectPython, PackageManager: "pip", Language: "python"},
	{File: "Pipfile", Kind: ProjectPython, PackageManager: "pipenv", Language: "python"},
	{File: "Cargo.toml", Kind: ProjectRust, PackageManager: "cargo", Language: "rust"},
	{File: "go.mod", Kind: ProjectGo, PackageManager: "go modules", Language: "go"},
	{File: "Gemfile", Kind: ProjectRuby, PackageManager: "bundler", Language: "ruby"},
	{File: "build.gradle", Kind: ProjectJava, PackageManager: "gradle", Language: "java"},
	{File: "pom.xml", Kind: ProjectJava, PackageManager: "maven", Language: "java"},
	{File: "Dockerfile", Kind: ProjectDocker, PackageManager: "docker", Language: ""},
	{File: "docker-compose.yml", Kind: ProjectDocker, PackageManager: "docker", Language: ""},
	{File: "docker-compose.yaml", Kind: ProjectDocker, PackageManager: "docker", Language: ""},
	{File: "terraform.tf", Kind: ProjectTerraform, PackageManager: "terraform", Language: "hcl"},
	{File: "main.tf", Kind: ProjectTerraform, PackageManager: "terraform", Language: "hcl"},
	{File: "Makefile", Kind: ProjectMake, PackageManager: "make", Language: ""},
}

// ConfigFileNames lists recognized configuration files collected into a
// context snapshot. Contents are truncated before inclusion.
var ConfigFileNames = []string{
	"package.json",
	"tsconfig.json",
	".nvmrc",
	"pyproject.toml",
	"requirements.txt",
	"Cargo.toml",
	"go.mod",
	"Gemfile",
	"Dockerfile",
	"docker-compose.yml",
	"docker-compose.yaml",
	"Makefile",
	".env.example",
	".eslintrc.json",
	".prettierrc",
	"vite.config.ts",
	"webpack.config.js",
}
