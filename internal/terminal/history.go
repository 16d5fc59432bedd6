package terminal

import "time"

// CommandRecord is a command observed on the session, with its exit
// code when known. ExitCode is -1 when the code was never learned (the
// arbiter does not interpret shell output).
type CommandRecord struct {
	Command  string    `json:"command"`
	ExitCode int       `json:"exitCode"`
	At       time.Time `json:"at"`
}

// commandHistory reconstructs typed command lines from raw input
// bytes, skipping ANSI escape sequences and honoring backspace and the
// ^C / ^U line clears.
type commandHistory struct {
	line     []byte
	inEscSeq bool
}

// Feed consumes input bytes and returns any completed command lines.
func (h *commandHistory) Feed(input []byte) []string {
	var completed []string
	for _, b := range input {
		if h.inEscSeq {
			// Escape sequences end with a letter.
			if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
				h.inEscSeq = false
			}
			continue
		}

		switch b {
		case 0x1b:
			h.inEscSeq = true
		case '\r', '\n':
			if len(h.line) > 0 {
				completed = append(completed, string(h.line))
				h.line = nil
			}
		case 127, '\b':
			if len(h.line) > 0 {
				h.line = h.line[:len(h.line)-1]
			}
		case 0x03, 0x15: // ^C, ^U
			h.line = nil
		default:
			if b >= 32 && b < 127 {
				h.line = append(h.line, b)
			}
		}
	}
	return completed
}
