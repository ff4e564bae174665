package telephony

import (
	"bytes"
	"encoding/xml"
	"strings"

	"medicare-assistant/internal/session"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include primitives we need at the adapter boundary.

const (
	speechVoice    = "alice"
	speechLanguage = "en-IN"

	// GatherTimeoutSeconds is the provider-enforced window for collecting a
	// spoken or keypad response. This system runs no timer of its own.
	GatherTimeoutSeconds = 60
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlGather struct {
	XMLName             xml.Name `xml:"Gather"`
	Input               string   `xml:"input,attr"`
	Timeout             int      `xml:"timeout,attr"`
	SpeechTimeout       string   `xml:"speechTimeout,attr,omitempty"`
	Action              string   `xml:"action,attr"`
	Method              string   `xml:"method,attr"`
	ActionOnEmptyResult string   `xml:"actionOnEmptyResult,attr,omitempty"`
	Verbs               []any    `xml:",any"`
}

func say(text string) twimlSay {
	return twimlSay{Voice: speechVoice, Language: speechLanguage, Text: text}
}

// PromptParams carries the display values for a reminder prompt document.
type PromptParams struct {
	PatientName   string
	CaregiverName string
	MedicineName  string
	Dosage        string
	ScheduledTime string
	DateKey       string
	Mode          session.Mode

	// GatherActionURL receives the callee's speech/digit response.
	GatherActionURL string
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

// RenderPrompt builds the voice-instruction document played when the call
// connects: a mode-aware greeting, the reminder sentence, and a gather
// directive collecting speech or a single DTMF digit. If the gather window
// elapses the provider posts an empty-payload callback to the action URL
// and then falls through to the closing say.
func RenderPrompt(p PromptParams) (string, error) {
	patient := orDefault(p.PatientName, "patient")
	caregiver := orDefault(p.CaregiverName, "caregiver")
	medicine := orDefault(p.MedicineName, "medicine")
	dosage := orDefault(p.Dosage, "as prescribed")
	when := orDefault(p.ScheduledTime, "now")
	date := orDefault(p.DateKey, "today")

	var intro string
	if p.Mode == session.ModePatientOnly {
		intro = "This is an automated medicine reminder. It is time to take " +
			medicine + ", " + dosage + ", at " + when + " on " + date + "."
	} else {
		intro = "This is an automated call set by " + caregiver + ". Hello " + patient +
			", it is time to take " + medicine + ", " + dosage + ", at " + when + " on " + date + "."
	}

	gather := twimlGather{
		Input:               "speech dtmf",
		Timeout:             GatherTimeoutSeconds,
		SpeechTimeout:       "auto",
		Action:              p.GatherActionURL,
		Method:              "POST",
		ActionOnEmptyResult: "true",
		Verbs: []any{
			say(intro),
			twimlPause{Length: 1},
			say("Please say yes or press 1 if you took your medicine. " +
				"If you do not respond within one minute, this dose will be marked as missed."),
		},
	}

	doc := twimlResponse{Verbs: []any{
		gather,
		say("No response received. This reminder is marked as missed. Take care."),
		twimlHangup{},
	}}
	return renderTwiML(doc)
}

// RenderClosing builds the document played after a gathered response has
// been recorded.
func RenderClosing(taken bool) (string, error) {
	var verbs []any
	if taken {
		verbs = []any{
			say("Thank you. Your response has been recorded as taken. Stay healthy."),
			twimlHangup{},
		}
	} else {
		verbs = []any{
			say("No valid yes response detected. This reminder is marked as missed."),
			twimlPause{Length: 1},
			say("Please take your medicine as soon as possible or contact your caregiver."),
			twimlHangup{},
		}
	}
	return renderTwiML(twimlResponse{Verbs: verbs})
}

// RenderGoodbye builds a benign document for callbacks that reference a
// call this process never created. The live call must never receive an
// error document.
func RenderGoodbye() (string, error) {
	return renderTwiML(twimlResponse{Verbs: []any{
		say("Thank you. Goodbye."),
		twimlHangup{},
	}})
}

func renderTwiML(doc twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
