package patterns

// ToolchainProbe is one version query run by the environment probe.
type ToolchainProbe struct {
	Name   string
	Binary string
	Args   []string
}

// ToolchainProbes is the fixed set of version queries. Each runs with
// its own timeout; missing binaries are silently omitted from the
// snapshot.
var ToolchainProbes = []ToolchainProbe{
	{Name: "node", Binary: "node", Args: []string{"--version"}},
	{Name: "npm", Binary: "npm", Args: []string{"--version"}},
	{Name: "python", Binary: "python", Args: []string{"--version"}},
	{Name: "python3", Binary: "python3", Args: []string{"--version"}},
	{Name: "pip", Binary: "pip", Args: []string{"--version"}},
	{Name: "docker", Binary: "docker", Args: []string{"--version"}},
	{Name: "git", Binary: "git", Args: []string{"--version"}},
	{Name: "go", Binary: "go", Args: []string{"version"}},
	{Name: "rustc", Binary: "rustc", Args: []string{"--version"}},
	{Name: "cargo", Binary: "cargo", Args: []string{"--version"}},
	{Name: "java", Binary: "java", Args: []string{"-version"}},
}
