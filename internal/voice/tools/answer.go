package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ordinals = map[string]int{
	"FIRST": 0, "SECOND": 1, "THIRD": 2, "FOURTH": 3, "FIFTH": 4,
	"SIXTH": 5, "SEVENTH": 6, "EIGHTH": 7, "NINTH": 8, "TENTH": 9,
	"ONE": 0, "TWO": 1, "THREE": 2, "FOUR": 3, "FIVE": 4,
}

var answerPrefixes = []string{"OPTION ", "ANSWER ", "LETTER ", "NUMBER ", "CHOICE ", "THE "}

// ParseAnswer maps a spoken answer ("B", "option b", "2", "second") to a
// zero-based option index. It does not check the question's option count.
func ParseAnswer(token string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(token))
	s = strings.TrimRight(s, ".!?,")
	for changed := true; changed; {
		changed = false
		for _, p := range answerPrefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(strings.TrimPrefix(s, p))
				changed = true
			}
		}
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, " ONE"))
	if s == "" {
		return 0, false
	}
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		return int(s[0] - 'A'), true
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return 0, false
		}
		return n - 1, true
	}
	if idx, ok := ordinals[s]; ok {
		return idx, true
	}
	return 0, false
}

// Letter renders a zero-based option index as "A", "B", ...
func Letter(idx int) string {
	if idx < 0 || idx > 25 {
		return strconv.Itoa(idx + 1)
	}
	return string(rune('A' + idx))
}

// ParseOptions reads stored question options: a JSON list, a lettered object
// ({"A": "...", "B": "..."}), or either of those encoded again as a string.
func ParseOptions(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, optionText(v))
		}
		return out
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		// "10" sorts after "9".
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) < len(keys[j])
			}
			return keys[i] < keys[j]
		})
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, optionText(obj[k]))
		}
		return out
	}
	var nested string
	if err := json.Unmarshal(raw, &nested); err == nil && nested != "" {
		return ParseOptions([]byte(nested))
	}
	return nil
}

func optionText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// CorrectIndex resolves a stored correct answer against the option list. The
// option text wins over a letter so that an option literally named "A" is
// not misread. Nil means no option matches.
func CorrectIndex(stored string, options []string) *int {
	s := strings.TrimSpace(stored)
	if s == "" {
		return nil
	}
	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), s) {
			idx := i
			return &idx
		}
	}
	if len(s) == 1 {
		c := strings.ToUpper(s)[0]
		if c >= 'A' && c <= 'Z' && int(c-'A') < len(options) {
			idx := int(c - 'A')
			return &idx
		}
	}
	return nil
}

// optionsSpoken lists options as "Option A: x, Option B: y".
func optionsSpoken(options []string) string {
	parts := make([]string, 0, len(options))
	for i, o := range options {
		parts = append(parts, fmt.Sprintf("Option %s: %s", Letter(i), o))
	}
	return strings.Join(parts, ", ")
}
