package model

import (
	"encoding/json"
	"fmt"
)

// CheckpointType selects the payload shape of a checkpoint.
type CheckpointType string

const (
	CheckpointVocab    CheckpointType = "vocab"
	CheckpointQuestion CheckpointType = "question"
	CheckpointNote     CheckpointType = "note"
)

// ValidCheckpointTypes are the allowed checkpoint types.
var ValidCheckpointTypes = map[CheckpointType]bool{
	CheckpointVocab:    true,
	CheckpointQuestion: true,
	CheckpointNote:     true,
}

// MaxQuestionOptions caps the answer choices of a question checkpoint.
const MaxQuestionOptions = 4

// Content is the type-dependent payload of a checkpoint. It is one of
// VocabContent, QuestionContent or NoteContent.
type Content interface {
	Type() CheckpointType
	clone() Content
}

// VocabContent points at a vocabulary record; the id carries all information.
type VocabContent struct {
	VocabID string
}

// QuestionContent is a quiz question with up to four options.
type QuestionContent struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// NoteContent is a free-text note.
type NoteContent struct {
	Note string `json:"note"`
}

func (VocabContent) Type() CheckpointType    { return CheckpointVocab }
func (QuestionContent) Type() CheckpointType { return CheckpointQuestion }
func (NoteContent) Type() CheckpointType     { return CheckpointNote }

func (c VocabContent) clone() Content { return c }
func (c NoteContent) clone() Content  { return c }
func (c QuestionContent) clone() Content {
	c.Options = append([]string(nil), c.Options...)
	return c
}

// NewContent returns the empty payload for t.
func NewContent(t CheckpointType) (Content, error) {
	switch t {
	case CheckpointVocab:
		return VocabContent{}, nil
	case CheckpointQuestion:
		return QuestionContent{}, nil
	case CheckpointNote:
		return NoteContent{}, nil
	}
	return nil, fmt.Errorf("invalid checkpoint type %q (valid: vocab, question, note)", t)
}

// Checkpoint is a time-indexed annotation on a lesson version.
type Checkpoint struct {
	ID              string
	LessonVersionID string
	TimeSec         float64
	Content         Content
}

// Type returns the payload type, or "" when no payload is set.
func (c Checkpoint) Type() CheckpointType {
	if c.Content == nil {
		return ""
	}
	return c.Content.Type()
}

// VocabID returns the referenced vocabulary id for vocab checkpoints.
func (c Checkpoint) VocabID() string {
	if v, ok := c.Content.(VocabContent); ok {
		return v.VocabID
	}
	return ""
}

// Clone returns a deep copy of c.
func (c Checkpoint) Clone() Checkpoint {
	if c.Content != nil {
		c.Content = c.Content.clone()
	}
	return c
}

// EncodeContent splits a payload into its stored columns: type, vocab id
// and the JSON body. Vocab payloads store an empty object.
func EncodeContent(c Content) (CheckpointType, string, string, error) {
	switch v := c.(type) {
	case VocabContent:
		return CheckpointVocab, v.VocabID, "{}", nil
	case QuestionContent:
		if v.Options == nil {
			v.Options = []string{}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", "", "", err
		}
		return CheckpointQuestion, "", string(b), nil
	case NoteContent:
		b, err := json.Marshal(v)
		if err != nil {
			return "", "", "", err
		}
		return CheckpointNote, "", string(b), nil
	}
	return "", "", "", fmt.Errorf("unsupported checkpoint content %T", c)
}

// DecodeContent rebuilds a payload from its stored columns.
func DecodeContent(t CheckpointType, vocabID string, body []byte) (Content, error) {
	switch t {
	case CheckpointVocab:
		return VocabContent{VocabID: vocabID}, nil
	case CheckpointQuestion:
		var q QuestionContent
		if len(body) > 0 {
			if err := json.Unmarshal(body, &q); err != nil {
				return nil, fmt.Errorf("decode question: %w", err)
			}
		}
		return q, nil
	case CheckpointNote:
		var n NoteContent
		if len(body) > 0 {
			if err := json.Unmarshal(body, &n); err != nil {
				return nil, fmt.Errorf("decode note: %w", err)
			}
		}
		return n, nil
	}
	return nil, fmt.Errorf("invalid checkpoint type %q", t)
}

type checkpointJSON struct {
	ID              string          `json:"id"`
	LessonVersionID string          `json:"lesson_version_id"`
	TimeSec         float64         `json:"time_sec"`
	Type            CheckpointType  `json:"type"`
	VocabID         string          `json:"vocab_id,omitempty"`
	Content         json.RawMessage `json:"content"`
}

func (c Checkpoint) MarshalJSON() ([]byte, error) {
	out := checkpointJSON{ID: c.ID, LessonVersionID: c.LessonVersionID, TimeSec: c.TimeSec, Content: json.RawMessage("{}")}
	if c.Content != nil {
		t, vocabID, body, err := EncodeContent(c.Content)
		if err != nil {
			return nil, err
		}
		out.Type, out.VocabID, out.Content = t, vocabID, json.RawMessage(body)
	}
	return json.Marshal(out)
}

func (c *Checkpoint) UnmarshalJSON(b []byte) error {
	var in checkpointJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	content, err := DecodeContent(in.Type, in.VocabID, in.Content)
	if err != nil {
		return err
	}
	*c = Checkpoint{ID: in.ID, LessonVersionID: in.LessonVersionID, TimeSec: in.TimeSec, Content: content}
	return nil
}
