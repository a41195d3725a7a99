// Package editor authors a single checkpoint and holds the working copy of
// the lesson being edited.
package editor

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rcliao/lesson-studio/internal/model"
)

// ErrNotOpen is returned when an edit arrives while the editor is closed.
var ErrNotOpen = errors.New("checkpoint editor is not open")

// ValidationError rejects a draft. Message is meant for the author.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// State is the editor's position in its lifecycle.
type State int

const (
	Closed State = iota
	OpenNew
	OpenExisting
)

func (s State) String() string {
	switch s {
	case OpenNew:
		return "open(new)"
	case OpenExisting:
		return "open(existing)"
	}
	return "closed"
}

// Pauser stops playback.
type Pauser interface {
	Pause()
}

// Draft holds the form fields. Fields of other types are kept while the
// type is switched back and forth and dropped on submit.
type Draft struct {
	ID              string
	LessonVersionID string
	TimeSec         float64
	Type            model.CheckpointType
	VocabID         string
	Question        string
	Options         []string
	Answer          string
	Note            string
}

// Editor is a small state machine around one Draft.
type Editor struct {
	player Pauser
	state  State
	draft  Draft
}

// New returns a closed editor. player may be nil.
func New(player Pauser) *Editor {
	return &Editor{player: player}
}

// OpenNew starts a new checkpoint at timeSec with a placeholder id. An empty
// type means vocab.
func (e *Editor) OpenNew(timeSec float64, t model.CheckpointType) error {
	if t == "" {
		t = model.CheckpointVocab
	}
	if !model.ValidCheckpointTypes[t] {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown checkpoint type %q", t)}
	}
	e.open(OpenNew, Draft{ID: uuid.NewString(), TimeSec: timeSec, Type: t})
	return nil
}

// OpenExisting loads cp into the form, keeping its id.
func (e *Editor) OpenExisting(cp model.Checkpoint) error {
	if cp.ID == "" {
		return &ValidationError{Field: "id", Message: "existing checkpoint has no id"}
	}
	d := Draft{ID: cp.ID, LessonVersionID: cp.LessonVersionID, TimeSec: cp.TimeSec, Type: cp.Type()}
	switch c := cp.Content.(type) {
	case model.VocabContent:
		d.VocabID = c.VocabID
	case model.QuestionContent:
		d.Question, d.Answer = c.Question, c.Answer
		d.Options = append([]string(nil), c.Options...)
	case model.NoteContent:
		d.Note = c.Note
	default:
		return &ValidationError{Field: "type", Message: "checkpoint has no content"}
	}
	e.open(OpenExisting, d)
	return nil
}

func (e *Editor) open(s State, d Draft) {
	if e.player != nil {
		e.player.Pause()
	}
	e.state, e.draft = s, d
}

// State reports whether the editor is open and for what.
func (e *Editor) State() State { return e.state }

// Draft returns a copy of the form fields; ok is false when closed.
func (e *Editor) Draft() (Draft, bool) {
	if e.state == Closed {
		return Draft{}, false
	}
	d := e.draft
	d.Options = append([]string(nil), e.draft.Options...)
	return d, true
}

func (e *Editor) edit(fn func(d *Draft)) error {
	if e.state == Closed {
		return ErrNotOpen
	}
	fn(&e.draft)
	return nil
}

func (e *Editor) SetTime(sec float64) error { return e.edit(func(d *Draft) { d.TimeSec = sec }) }

func (e *Editor) SetType(t model.CheckpointType) error {
	if e.state != Closed && !model.ValidCheckpointTypes[t] {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown checkpoint type %q", t)}
	}
	return e.edit(func(d *Draft) { d.Type = t })
}

func (e *Editor) SetVocabID(id string) error {
	return e.edit(func(d *Draft) { d.VocabID = strings.TrimSpace(id) })
}

func (e *Editor) SetQuestion(q string) error { return e.edit(func(d *Draft) { d.Question = q }) }

func (e *Editor) SetOptions(opts []string) error {
	return e.edit(func(d *Draft) { d.Options = append([]string(nil), opts...) })
}

func (e *Editor) SetAnswer(a string) error { return e.edit(func(d *Draft) { d.Answer = a }) }

func (e *Editor) SetNote(n string) error { return e.edit(func(d *Draft) { d.Note = n }) }

// Submit validates the draft. On success the editor closes and the finished
// checkpoint is returned; on failure it stays open with the draft intact.
func (e *Editor) Submit() (model.Checkpoint, error) {
	if e.state == Closed {
		return model.Checkpoint{}, ErrNotOpen
	}
	content, err := Validate(e.draft)
	if err != nil {
		return model.Checkpoint{}, err
	}
	cp := model.Checkpoint{
		ID:              e.draft.ID,
		LessonVersionID: e.draft.LessonVersionID,
		TimeSec:         e.draft.TimeSec,
		Content:         content,
	}
	e.state, e.draft = Closed, Draft{}
	return cp, nil
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.state, e.draft = Closed, Draft{}
}

// Validate checks d and builds the payload for its type.
func Validate(d Draft) (model.Content, error) {
	if math.IsNaN(d.TimeSec) || math.IsInf(d.TimeSec, 0) || d.TimeSec < 0 {
		return nil, &ValidationError{Field: "time_sec", Message: "time must be zero or more seconds"}
	}
	switch d.Type {
	case model.CheckpointVocab:
		if d.VocabID == "" {
			return nil, &ValidationError{Field: "vocab_id", Message: "choose a vocabulary word"}
		}
		return model.VocabContent{VocabID: d.VocabID}, nil

	case model.CheckpointQuestion:
		if strings.TrimSpace(d.Question) == "" {
			return nil, &ValidationError{Field: "question", Message: "question text is required"}
		}
		if len(d.Options) > model.MaxQuestionOptions {
			return nil, &ValidationError{Field: "options", Message: fmt.Sprintf("at most %d options", model.MaxQuestionOptions)}
		}
		filled := lo.Filter(d.Options, func(o string, _ int) bool { return strings.TrimSpace(o) != "" })
		if d.Answer != "" && !lo.Contains(filled, d.Answer) {
			return nil, &ValidationError{Field: "answer", Message: "answer must be one of the options"}
		}
		return model.QuestionContent{
			Question: d.Question,
			Options:  append([]string{}, d.Options...),
			Answer:   d.Answer,
		}, nil

	case model.CheckpointNote:
		return model.NoteContent{Note: d.Note}, nil
	}
	return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown checkpoint type %q", d.Type)}
}
