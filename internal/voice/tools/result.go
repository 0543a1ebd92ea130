package tools

import (
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
)

// Result is what a tool call produces. Output is relayed to the assistant;
// Events and Navigation go to the client out of band.
type Result struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Code       apierr.Code     `json:"-"`
	Data       map[string]any  `json:"data,omitempty"`
	Events     []ContextUpdate `json:"-"`
	Navigation *Navigation     `json:"-"`
}

// ContextUpdate is a UI hint such as "show these courses".
type ContextUpdate struct {
	Action  string
	Payload map[string]any
}

// Data flattens the update into the client frame's data object.
func (u ContextUpdate) Data() map[string]any {
	out := make(map[string]any, len(u.Payload)+1)
	for k, v := range u.Payload {
		out[k] = v
	}
	out["action"] = u.Action
	return out
}

// Navigation is a routing instruction. Back means "go back" and carries no URL.
type Navigation struct {
	Page string  `json:"page"`
	URL  *string `json:"url"`
	Back bool    `json:"back"`
}

// Output is the function_call_output payload sent upstream.
func (r Result) Output() map[string]any {
	out := map[string]any{"success": r.Success, "message": r.Message}
	if len(r.Data) > 0 {
		out["data"] = r.Data
	}
	return out
}

func ok(msg string) Result { return Result{Success: true, Message: msg} }

func (r Result) with(key string, v any) Result {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = v
	return r
}

func (r Result) emit(action string, payload map[string]any) Result {
	r.Events = append(r.Events, ContextUpdate{Action: action, Payload: payload})
	return r
}

// failure converts any error into a spoken failure. Internal faults never
// leak their text to the student.
func failure(err error) Result {
	code, msg := apierr.CodeOf(err), apierr.MessageOf(err)
	if code == apierr.CodeInternal || msg == "" {
		msg = genericFailure
	}
	return Result{Success: false, Code: code, Message: msg}
}

const genericFailure = "Sorry, something went wrong. Please try again."

func notFound(msg string) error     { return apierr.New(apierr.CodeNotFound, msg) }
func invalid(msg string) error      { return apierr.New(apierr.CodeInvalidArgument, msg) }
func precondition(msg string) error { return apierr.New(apierr.CodePreconditionFailed, msg) }
