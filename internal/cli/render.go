package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rcliao/lesson-studio/internal/content"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/timeline"
)

var typeColors = map[model.CheckpointType]*color.Color{
	model.CheckpointVocab:    color.New(color.FgCyan),
	model.CheckpointQuestion: color.New(color.FgYellow),
	model.CheckpointNote:     color.New(color.FgGreen),
}

var typeGlyphs = map[model.CheckpointType]string{
	model.CheckpointVocab:    "v",
	model.CheckpointQuestion: "?",
	model.CheckpointNote:     "n",
}

// renderTimeline draws the markers on a bar of width cells followed by one
// line per checkpoint. The play-head is drawn last so it stays visible.
func renderTimeline(w io.Writer, duration float64, markers []timeline.Marker, cps []model.Checkpoint, width int) {
	if width < 10 {
		width = 10
	}
	cells := make([]string, width)
	for i := range cells {
		cells[i] = "-"
	}
	var head *timeline.Marker
	for i, m := range markers {
		if m.Kind == timeline.MarkerPlayHead {
			head = &markers[i]
			continue
		}
		glyph := typeGlyphs[m.Type]
		if glyph == "" {
			glyph = "*"
		}
		if c, ok := typeColors[m.Type]; ok {
			glyph = c.Sprint(glyph)
		}
		cells[timeline.Column(m.Fraction, width)] = glyph
	}
	if head != nil {
		cells[timeline.Column(head.Fraction, width)] = color.New(color.FgRed, color.Bold).Sprint("|")
	}

	fmt.Fprintf(w, "[%s] %s\n", strings.Join(cells, ""), model.FormatDuration(int(duration)))
	for _, cp := range cps {
		typ := string(cp.Type())
		if c, ok := typeColors[cp.Type()]; ok {
			typ = c.Sprint(typ)
		}
		fmt.Fprintf(w, "%8.2fs  %-8s  %s  %s\n", cp.TimeSec, typ, cp.ID, summary(cp))
	}
}

func summary(cp model.Checkpoint) string {
	switch c := cp.Content.(type) {
	case model.VocabContent:
		return c.VocabID
	case model.QuestionContent:
		s := c.Question
		if len(c.Options) > 0 {
			s += " [" + strings.Join(c.Options, " / ") + "]"
		}
		return s
	case model.NoteContent:
		return c.Note
	}
	return ""
}

// renderTree prints units, their lessons and the derived lesson fields.
func renderTree(w io.Writer, tree *content.Tree) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	for _, un := range tree.Units {
		cat := ""
		if un.CategoryName != "" {
			cat = " " + dim.Sprintf("(%s)", un.CategoryName)
		}
		fmt.Fprintf(w, "%s%s %s\n", bold.Sprint(un.Title), cat, dim.Sprint(un.ID))
		for _, ln := range un.Lessons {
			cps := 0
			status := "no version"
			if ln.Version != nil {
				cps = len(ln.Version.Checkpoints)
				status = fmt.Sprintf("v%d %s", ln.Version.VersionNumber, ln.Version.Status)
			}
			fmt.Fprintf(w, "  %d. %s  %s  %s  %s  %d checkpoints %s\n",
				ln.Order, ln.Title, status, ln.DurationText, ln.DifficultyLabel, cps, dim.Sprint(ln.ID))
			for _, v := range ln.Vocabulary {
				fmt.Fprintf(w, "       - %s\n", v.Word)
			}
		}
	}
}
