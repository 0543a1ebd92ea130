package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

// Substrings that mark a key as secret. Matching is on the lowercased key.
var secretKeyParts = []string{
	"token",
	"credential",
	"authorization",
	"password",
	"secret",
	"cookie",
	"api_key",
	"apikey",
	"email",
}

// Keys that identify a person or connection. Values are replaced by a salted
// digest so log lines stay correlatable without exposing the raw id.
var identityKeyParts = []string{
	"user_id",
	"session_id",
	"identity_id",
}

type redactor struct {
	enabled bool
	salt    string
}

var (
	redactorOnce sync.Once
	redactorInst *redactor
)

func defaultRedactor() *redactor {
	redactorOnce.Do(func() {
		redactorInst = newRedactor(os.Getenv("LOG_REDACTION_ENABLED"), os.Getenv("LOG_HASH_SALT"))
	})
	return redactorInst
}

func newRedactor(enabledRaw, salt string) *redactor {
	r := &redactor{enabled: true, salt: strings.TrimSpace(salt)}
	switch strings.TrimSpace(strings.ToLower(enabledRaw)) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	return r
}

func (r *redactor) apply(kv []interface{}) []interface{} {
	if len(kv) == 0 || !r.enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := stringify(kv[i])
		out = append(out, key, r.value(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

func (r *redactor) value(key string, val interface{}) interface{} {
	if key != "" {
		if containsAny(key, secretKeyParts) {
			return redacted
		}
		if containsAny(key, identityKeyParts) {
			return r.digest(val)
		}
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = r.value(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, inner := range v {
			out = append(out, r.value("", inner))
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
		return v
	default:
		return val
	}
}

func (r *redactor) digest(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if r.salt != "" {
		_, _ = h.Write([]byte(r.salt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func containsAny(s string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
