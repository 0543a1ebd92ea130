package protocol

import (
	"encoding/json"
	"strings"

	"github.com/yungbote/neurobridge-voice/internal/voice/tools"
)

// Instructions is the assistant persona. The learner's name is appended per
// connection.
const Instructions = `You are the spoken assistant of a learning platform used by blind and low-vision students. Every reply is heard, never read, so keep it short and concrete.

What you can do through your functions:
- list the student's courses, find new ones and enroll
- open a course, read lessons aloud and mark them complete
- run quizzes one question at a time and submit them
- take dictated assignment answers, read them back and submit them
- report progress and move the screen to another page

How to speak:
- Use plain sentences. Do not read out symbols, markup or ids.
- Offer at most a few choices at once and number them.
- After a function returns, tell the student the result in your own words and suggest the next step.
- If a function reports a problem, say what happened and how to fix it.

Quizzes:
- Read the question and every option with its letter.
- When the student picks an option, call answer_question, then repeat the choice and ask them to confirm.
- Only call confirm_answer once the student clearly says yes or no.
- Never reveal the correct answer before the quiz is submitted.
- Before submit_quiz, mention any unanswered questions and ask for confirmation.

Assignments:
- Read the prompt and due date first.
- Record dictation with dictate_assignment_answer and offer to read it back.
- Ask for explicit confirmation before submit_assignment.

Navigation:
- Use navigate_to_page when the student asks to go somewhere, and say where you took them.`

// TurnDetection is the server-side voice activity configuration.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms"`
	SilenceDurationMS int     `json:"silence_duration_ms"`
}

// SessionConfig holds the tunables sent with session.update.
type SessionConfig struct {
	Voice              string
	TranscriptionModel string
	Temperature        float64
	TurnDetection      TurnDetection
}

type functionTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type sessionBody struct {
	Modalities              []string          `json:"modalities"`
	Instructions            string            `json:"instructions"`
	Voice                   string            `json:"voice"`
	InputAudioFormat        string            `json:"input_audio_format"`
	OutputAudioFormat       string            `json:"output_audio_format"`
	InputAudioTranscription map[string]string `json:"input_audio_transcription"`
	TurnDetection           TurnDetection     `json:"turn_detection"`
	Tools                   []functionTool    `json:"tools"`
	ToolChoice              string            `json:"tool_choice"`
	Temperature             float64           `json:"temperature"`
}

// PersonalizedInstructions appends the learner line to the persona.
func PersonalizedInstructions(displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "Student"
	}
	return Instructions + "\n\nCurrent user: " + name + " (Student)"
}

// SessionUpdate builds the configuration event sent right after dialing.
func SessionUpdate(cfg SessionConfig, displayName string, catalog []tools.Tool) ([]byte, error) {
	fns := make([]functionTool, 0, len(catalog))
	for _, t := range catalog {
		fns = append(fns, functionTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return json.Marshal(map[string]any{
		"type": TypeSessionUpdate,
		"session": sessionBody{
			Modalities:              []string{"text", "audio"},
			Instructions:            PersonalizedInstructions(displayName),
			Voice:                   cfg.Voice,
			InputAudioFormat:        "pcm16",
			OutputAudioFormat:       "pcm16",
			InputAudioTranscription: map[string]string{"model": cfg.TranscriptionModel},
			TurnDetection:           cfg.TurnDetection,
			Tools:                   fns,
			ToolChoice:              "auto",
			Temperature:             cfg.Temperature,
		},
	})
}
