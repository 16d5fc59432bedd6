package terminal

import (
	"net/url"
	"regexp"
	"strings"
)

// osc7Re matches a complete OSC-7 working directory report:
// ESC ] 7 ; file://<host><path> BEL (or ST terminated).
var osc7Re = regexp.MustCompile(`\x1b\]7;file://([^\x07\x1b]*)(?:\x07|\x1b\\)`)

// osc7CarryMax bounds the partial-sequence carry between chunks.
const osc7CarryMax = 1024

// osc7Scanner extracts OSC-7 working directory reports from a byte
// stream, tolerating sequences split across chunk boundaries.
type osc7Scanner struct {
	carry []byte
}

// Scan feeds a chunk and returns the decoded paths of all complete
// OSC-7 sequences observed, in order.
func (s *osc7Scanner) Scan(chunk []byte) []string {
	data := chunk
	if len(s.carry) > 0 {
		data = append(s.carry, chunk...)
	}

	var paths []string
	locs := osc7Re.FindAllSubmatchIndex(data, -1)
	end := 0
	for _, loc := range locs {
		uri := string(data[loc[2]:loc[3]])
		if p, ok := decodeOSC7(uri); ok {
			paths = append(paths, p)
		}
		end = loc[1]
	}

	// Keep any trailing partial sequence for the next chunk.
	rest := data[end:]
	if i := lastIndexByte(rest, 0x1b); i >= 0 {
		rest = rest[i:]
		if len(rest) > osc7CarryMax {
			rest = nil
		}
		s.carry = append(s.carry[:0], rest...)
	} else {
		s.carry = s.carry[:0]
	}

	return paths
}

// decodeOSC7 splits host from path and percent-decodes the path.
func decodeOSC7(uri string) (string, bool) {
	// uri is "<host><path>" where path starts at the first slash.
	slash := strings.IndexByte(uri, '/')
	if slash < 0 {
		return "", false
	}
	path, err := url.PathUnescape(uri[slash:])
	if err != nil || path == "" {
		return "", false
	}
	return path, true
}

func lastIndexByte(b []byte, c byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == c {
			return i
		}
	}
	return -1
}
