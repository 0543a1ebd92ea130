package tools

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

// refKeys names the argument keys one entity kind is addressed by.
type refKeys struct {
	id, number, name string
}

var (
	courseKeys     = refKeys{"course_id", "course_number", "course_name"}
	lessonKeys     = refKeys{"lesson_id", "lesson_number", "lesson_name"}
	quizKeys       = refKeys{"quiz_id", "quiz_number", "quiz_name"}
	assignmentKeys = refKeys{"assignment_id", "assignment_number", "assignment_name"}
)

// resolveRef picks an entity by explicit id, then by display number in
// cache, then by the first cached title containing the name. The returned
// ref has only ID set when it came from an explicit id.
func resolveRef(args Args, cache []session.Ref, k refKeys) (session.Ref, bool) {
	if id := args.UUID(k.id); id != uuid.Nil {
		for _, r := range cache {
			if r.ID == id {
				return r, true
			}
		}
		return session.Ref{ID: id}, true
	}
	if n, ok := args.Int(k.number); ok && n > 0 {
		for _, r := range cache {
			if r.Number == n {
				return r, true
			}
		}
	}
	if name := strings.ToLower(args.String(k.name)); name != "" {
		for _, r := range cache {
			if strings.Contains(strings.ToLower(r.Title), name) {
				return r, true
			}
		}
	}
	return session.Ref{}, false
}

// addressed reports whether any of the keys were supplied.
func addressed(args Args, k refKeys) bool {
	for _, key := range []string{k.id, k.number, k.name} {
		if key == "" {
			continue
		}
		if _, ok := args[key]; ok {
			return true
		}
	}
	return false
}
