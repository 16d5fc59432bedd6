package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/termai/termai/internal/flow"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Interpolate substitutes every {{nodeID.path}} placeholder in s with
// the matching value from earlier node results. Resolution is total: a
// placeholder that names an unknown node, an unfinished node, or a
// missing path becomes the empty string rather than an error, so a
// template can never fail a run by itself.
func Interpolate(s string, results map[string]*flow.NodeResult) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		ref := strings.TrimSpace(placeholderRe.FindStringSubmatch(match)[1])
		return resolveRef(ref, results)
	})
}

func resolveRef(ref string, results map[string]*flow.NodeResult) string {
	parts := strings.Split(ref, ".")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	res, ok := results[parts[0]]
	if !ok || res == nil {
		return ""
	}

	payload := resultPayload(res)
	if len(parts) == 1 {
		return renderValue(payload)
	}
	return renderValue(walkPath(payload, parts[1:]))
}

// resultPayload exposes a node's result as a generic map so that path
// lookup follows the persisted JSON field names exactly.
func resultPayload(res *flow.NodeResult) any {
	var payload any
	switch {
	case res.Shell != nil:
		payload = res.Shell
	case res.AI != nil:
		payload = res.AI
	case res.Branch != nil:
		payload = res.Branch
	case res.File != nil:
		payload = res.File
	default:
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	return generic
}

func walkPath(v any, parts []string) any {
	for _, part := range parts {
		switch cur := v.(type) {
		case map[string]any:
			next, ok := cur[part]
			if !ok {
				return nil
			}
			v = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(cur) {
				return nil
			}
			v = cur[idx]
		default:
			return nil
		}
	}
	return v
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
