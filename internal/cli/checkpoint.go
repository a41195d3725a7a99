package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/lesson-studio/internal/editor"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/store"
	"github.com/rcliao/lesson-studio/internal/studio"
	"github.com/rcliao/lesson-studio/internal/timeline"
)

func init() {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Author the checkpoints of a lesson",
	}

	list := &cobra.Command{
		Use:   "list <lesson-id>",
		Short: "List checkpoints on the lesson timeline",
		Args:  cobra.ExactArgs(1),
		Run:   runCheckpointList,
	}
	list.Flags().Float64("playhead", 0, "Play-head position to draw, in seconds")
	list.Flags().Int("width", 60, "Timeline width in text mode")

	add := &cobra.Command{
		Use:   "add <lesson-id>",
		Short: "Add a checkpoint and save the lesson",
		Long:  "Add a checkpoint at --at seconds, or at the play-head (--playhead, truncated to whole seconds), then save.",
		Args:  cobra.ExactArgs(1),
		Run:   runCheckpointAdd,
	}
	add.Flags().Float64("at", 0, "Checkpoint time in seconds")
	add.Flags().Float64("playhead", 0, "Current play-head in seconds, used when --at is not given")
	addContentFlags(add)

	edit := &cobra.Command{
		Use:   "edit <lesson-id> <checkpoint-id>",
		Short: "Edit a checkpoint and save the lesson",
		Args:  cobra.ExactArgs(2),
		Run:   runCheckpointEdit,
	}
	edit.Flags().Float64("at", 0, "Checkpoint time in seconds")
	addContentFlags(edit)

	rm := &cobra.Command{
		Use:   "rm <lesson-id> <checkpoint-id>",
		Short: "Remove a checkpoint and save the lesson",
		Args:  cobra.ExactArgs(2),
		Run:   runCheckpointRm,
	}

	cmd.AddCommand(list, add, edit, rm)
	RootCmd.AddCommand(cmd)
}

func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "vocab, question or note")
	cmd.Flags().String("vocab", "", "Vocabulary id (vocab)")
	cmd.Flags().String("question", "", "Question text (question)")
	cmd.Flags().StringArray("option", nil, "Answer option, repeatable up to 4 (question)")
	cmd.Flags().String("answer", "", "Correct option (question)")
	cmd.Flags().String("note", "", "Note text (note)")
}

// applyContentFlags copies the changed flags into the open editor.
func applyContentFlags(cmd *cobra.Command, ed *editor.Editor) error {
	f := cmd.Flags()
	if f.Changed("type") {
		v, _ := f.GetString("type")
		if err := ed.SetType(model.CheckpointType(v)); err != nil {
			return err
		}
	}
	if f.Changed("at") {
		v, _ := f.GetFloat64("at")
		if err := ed.SetTime(v); err != nil {
			return err
		}
	}
	setters := []struct {
		flag string
		set  func(string) error
	}{
		{"vocab", ed.SetVocabID},
		{"question", ed.SetQuestion},
		{"answer", ed.SetAnswer},
		{"note", ed.SetNote},
	}
	for _, s := range setters {
		if f.Changed(s.flag) {
			v, _ := f.GetString(s.flag)
			if err := s.set(v); err != nil {
				return err
			}
		}
	}
	if f.Changed("option") {
		v, _ := f.GetStringArray("option")
		if err := ed.SetOptions(v); err != nil {
			return err
		}
	}
	return nil
}

func runCheckpointList(cmd *cobra.Command, args []string) {
	playhead, _ := cmd.Flags().GetFloat64("playhead")
	width, _ := cmd.Flags().GetInt("width")

	s, svc := openContent(cmd.Context())
	defer s.Close()

	ln, ok := svc.Lesson(args[0])
	if !ok {
		exitErr("checkpoint list", fmt.Errorf("lesson %s: %w", args[0], store.ErrNotFound))
	}
	var cps []model.Checkpoint
	tl := timeline.New(headlessPlayer{}, editor.New(headlessPlayer{}), timeline.Options{Logger: logger})
	if ln.Version != nil {
		cps = ln.Version.Checkpoints
		tl.OnReady(float64(ln.Version.DurationSec))
	}
	tl.OnProgress(playhead)

	if textOutput() {
		renderTimeline(os.Stdout, tl.Duration(), tl.Markers(cps), cps, width)
		return
	}
	printJSON(map[string]interface{}{
		"lesson_id":    ln.ID,
		"duration_sec": tl.Duration(),
		"markers":      tl.Markers(cps),
		"checkpoints":  cps,
	})
}

func runCheckpointAdd(cmd *cobra.Command, args []string) {
	s, sess := openStudio(cmd.Context(), args[0])
	defer s.Close()

	var at *float64
	if cmd.Flags().Changed("at") {
		v, _ := cmd.Flags().GetFloat64("at")
		at = &v
	} else if cmd.Flags().Changed("playhead") {
		v, _ := cmd.Flags().GetFloat64("playhead")
		sess.Timeline.OnProgress(v)
	}
	if _, err := sess.NewCheckpointAt(at); err != nil {
		exitErr("checkpoint add", err)
	}
	if err := applyContentFlags(cmd, sess.Editor); err != nil {
		exitErr("checkpoint add", err)
	}
	if _, err := sess.SubmitCheckpoint(); err != nil {
		exitErr("checkpoint add", err)
	}
	saveAndPrint(cmd, sess)
}

func runCheckpointEdit(cmd *cobra.Command, args []string) {
	s, sess := openStudio(cmd.Context(), args[0])
	defer s.Close()

	if err := sess.EditCheckpoint(args[1]); err != nil {
		exitErr("checkpoint edit", err)
	}
	if err := applyContentFlags(cmd, sess.Editor); err != nil {
		exitErr("checkpoint edit", err)
	}
	if _, err := sess.SubmitCheckpoint(); err != nil {
		exitErr("checkpoint edit", err)
	}
	saveAndPrint(cmd, sess)
}

func runCheckpointRm(cmd *cobra.Command, args []string) {
	s, sess := openStudio(cmd.Context(), args[0])
	defer s.Close()

	if err := sess.RemoveCheckpoint(args[1]); err != nil {
		exitErr("checkpoint rm", err)
	}
	saveAndPrint(cmd, sess)
}

// saveAndPrint saves the session and prints the outcome of every step.
func saveAndPrint(cmd *cobra.Command, sess *studio.Session) {
	res := sess.Save(cmd.Context())

	steps := make([]map[string]interface{}, 0, len(res.Steps))
	for _, st := range res.Steps {
		m := map[string]interface{}{"name": st.Name}
		switch {
		case st.Skipped:
			m["skipped"] = true
		case st.Err != nil:
			m["error"] = st.Err.Error()
		default:
			m["ok"] = true
		}
		steps = append(steps, m)
	}
	out := map[string]interface{}{"ok": res.OK(), "steps": steps}
	if res.OK() {
		out["checkpoints"] = sess.WorkingCopy().Checkpoints.Sorted()
	}
	printJSON(out)
	if !res.OK() {
		exitErr("save failed, check details", res.Err)
	}
}
