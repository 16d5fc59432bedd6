package terminal

import (
	"path/filepath"
	"strings"
)

// ShellFamily groups shells by their prompt-hook mechanism.
type ShellFamily string

const (
	ShellBash       ShellFamily = "bash"
	ShellZsh        ShellFamily = "zsh"
	ShellFish       ShellFamily = "fish"
	ShellPowershell ShellFamily = "powershell"
	ShellUnknown    ShellFamily = "unknown"
)

// DetectShellFamily maps a shell binary path to its family.
func DetectShellFamily(shellPath string) ShellFamily {
	base := strings.ToLower(filepath.Base(shellPath))
	switch {
	case strings.HasPrefix(base, "bash"), base == "sh":
		return ShellBash
	case strings.HasPrefix(base, "zsh"):
		return ShellZsh
	case strings.HasPrefix(base, "fish"):
		return ShellFish
	case strings.HasPrefix(base, "pwsh"), strings.HasPrefix(base, "powershell"):
		return ShellPowershell
	default:
		return ShellUnknown
	}
}

// integrationPreamble returns the prompt-hook snippet for the shell
// family. The snippet makes the shell emit an OSC-7 working directory
// report before every prompt; cwd tracking relies solely on those
// reports. Each line starts with a space so history-conscious shells
// keep the setup out of history. Returns an empty string for unknown
// families, in which case cwd updates degrade gracefully.
func integrationPreamble(family ShellFamily) string {
	switch family {
	case ShellBash:
		return ` export PROMPT_COMMAND='printf "\033]7;file://%s%s\007" "$HOSTNAME" "$PWD"'` + "\r" +
			` clear` + "\r"
	case ShellZsh:
		return ` precmd() { printf "\033]7;file://%s%s\007" "$HOST" "$PWD" }` + "\r" +
			` clear` + "\r"
	case ShellFish:
		return ` function __termai_osc7 --on-event fish_prompt; printf "\033]7;file://%s%s\007" (hostname) "$PWD"; end` + "\r" +
			` clear` + "\r"
	case ShellPowershell:
		return ` function prompt { $p = $PWD.Path -replace '\\', '/'; Write-Host -NoNewline ("` + "\x1b" + `]7;file://" + $env:COMPUTERNAME + $p + "` + "\x07" + `"); "PS $PWD> " }` + "\r" +
			` Clear-Host` + "\r"
	default:
		return ""
	}
}
