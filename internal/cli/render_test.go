package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/rcliao/lesson-studio/internal/content"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/timeline"
)

func init() {
	color.NoColor = true
}

func TestRenderTimeline(t *testing.T) {
	cps := []model.Checkpoint{
		{ID: "a", TimeSec: 0, Content: model.VocabContent{VocabID: "lion-1"}},
		{ID: "b", TimeSec: 100, Content: model.QuestionContent{Question: "Roar?", Options: []string{"yes", "no"}}},
	}
	markers := []timeline.Marker{
		{Kind: timeline.MarkerPlayHead, TimeSec: 50, Fraction: 0.5},
		{Kind: timeline.MarkerCheckpoint, CheckpointID: "a", Type: model.CheckpointVocab, Fraction: 0},
		{Kind: timeline.MarkerCheckpoint, CheckpointID: "b", Type: model.CheckpointQuestion, Fraction: 1},
	}

	var buf bytes.Buffer
	renderTimeline(&buf, 100, markers, cps, 11)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	if lines[0] != "[v----|----?] 1:40" {
		t.Errorf("unexpected bar %q", lines[0])
	}
	if len(lines) != 3 || !strings.Contains(lines[2], "Roar? [yes / no]") {
		t.Errorf("unexpected rows %q", lines)
	}
}

func TestRenderTree(t *testing.T) {
	tree := &content.Tree{Units: []*content.UnitNode{{
		Unit:         model.Unit{ID: "u1", Title: "Animals"},
		CategoryName: "X",
		Lessons: []*content.LessonNode{{
			Lesson:          model.Lesson{ID: "l1", Title: "Lions", Order: 1},
			Version:         &content.VersionNode{LessonVersion: model.LessonVersion{VersionNumber: 1, Status: model.StatusDraft}},
			DurationText:    "0:00",
			DifficultyLabel: "Intermediate",
			Vocabulary:      []model.Vocabulary{{ID: "lion-1", Word: "lion"}},
		}},
	}}}

	var buf bytes.Buffer
	renderTree(&buf, tree)
	out := buf.String()
	for _, want := range []string{"Animals (X) u1", "1. Lions  v1 draft  0:00  Intermediate  0 checkpoints l1", "- lion"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected %v", got)
	}
}
