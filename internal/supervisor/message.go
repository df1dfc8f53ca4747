package supervisor

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/pdbuild/internal/model"
)

// Reasons emitted by the compiler driver.
const (
	ReasonCompilerArtifact = "compiler-artifact"
	ReasonCompilerMessage  = "compiler-message"
	ReasonBuildFinished    = "build-finished"
)

// EventKind classifies a decoded line.
type EventKind int

const (
	EventOther EventKind = iota
	EventArtifact
	EventDiagnostic
	EventFinished
)

// Diagnostic is a compiler message forwarded to the user.
type Diagnostic struct {
	Level    string `json:"level"`
	Message  string `json:"message"`
	Rendered string `json:"rendered"`
}

// Event is one classified line of the driver's stdout.
type Event struct {
	Kind       EventKind
	Artifact   model.Artifact
	Diagnostic Diagnostic
	Success    bool
	Reason     string
}

type rawEvent struct {
	Reason     string          `json:"reason"`
	PackageID  string          `json:"package_id"`
	Target     model.Target    `json:"target"`
	Profile    model.Profile   `json:"profile"`
	Filenames  []string        `json:"filenames"`
	Executable *string         `json:"executable"`
	Fresh      bool            `json:"fresh"`
	Message    json.RawMessage `json:"message"`
	Success    *bool           `json:"success"`
}

// Decode classifies a single line. Lines that are not JSON objects are
// returned as EventOther without an error; malformed events with a known
// reason are reported as errors.
func Decode(line []byte) (Event, error) {
	if len(line) == 0 || line[0] != '{' {
		return Event{Kind: EventOther}, nil
	}

	var raw rawEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{Kind: EventOther}, fmt.Errorf("decoding driver event: %w", err)
	}

	ev := Event{Kind: EventOther, Reason: raw.Reason}
	switch raw.Reason {
	case ReasonCompilerArtifact:
		ev.Kind = EventArtifact
		ev.Artifact = model.Artifact{
			PackageID: raw.PackageID,
			Target:    raw.Target,
			Filenames: raw.Filenames,
			Profile:   raw.Profile,
			Fresh:     raw.Fresh,
		}
		if raw.Executable != nil {
			ev.Artifact.Executable = *raw.Executable
		}
	case ReasonCompilerMessage:
		ev.Kind = EventDiagnostic
		if len(raw.Message) > 0 {
			if err := json.Unmarshal(raw.Message, &ev.Diagnostic); err != nil {
				return Event{Kind: EventOther}, fmt.Errorf("decoding compiler message of %s: %w", model.PackageName(raw.PackageID), err)
			}
		}
	case ReasonBuildFinished:
		if raw.Success == nil {
			return Event{Kind: EventOther}, fmt.Errorf("build-finished event without success flag")
		}
		ev.Kind = EventFinished
		ev.Success = *raw.Success
	}
	return ev, nil
}
