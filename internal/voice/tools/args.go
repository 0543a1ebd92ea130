package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Args is the decoded argument object of a tool call. Accessors are lenient
// because the assistant sometimes quotes numbers or sends floats.
type Args map[string]any

// ParseArgs decodes the raw JSON arguments. Blank input is an empty bag.
func ParseArgs(raw string) (Args, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Args{}, nil
	}
	var a Args
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return Args{}, err
	}
	if a == nil {
		a = Args{}
	}
	return a, nil
}

func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Int returns a whole number from a number or numeric string.
func (a Args) Int(key string) (int, bool) {
	switch v := a[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool accepts JSON booleans and the strings "true"/"yes"/"false"/"no".
func (a Args) Bool(key string, def bool) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true
		case "false", "no", "n", "0":
			return false
		}
	}
	return def
}

// UUID returns the parsed id under key, or uuid.Nil when absent or malformed.
func (a Args) UUID(key string) uuid.UUID {
	id, err := uuid.Parse(a.String(key))
	if err != nil {
		return uuid.Nil
	}
	return id
}
