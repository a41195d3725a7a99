package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lesson-studio/internal/store"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Manage lessons",
}

func init() {
	add := &cobra.Command{
		Use:   "add <unit-id>",
		Short: "Create a lesson with an empty draft version",
		Args:  cobra.ExactArgs(1),
		Run:   runLessonAdd,
	}
	add.Flags().String("title", "", "Title (required)")
	add.Flags().String("desc", "", "Description")
	add.MarkFlagRequired("title")

	show := &cobra.Command{
		Use:   "show <lesson-id>",
		Short: "Show a lesson with its current version",
		Args:  cobra.ExactArgs(1),
		Run:   runLessonShow,
	}

	edit := &cobra.Command{
		Use:   "edit <lesson-id>",
		Short: "Edit the lesson title and version metadata, then save",
		Long:  "Edit the working copy of a lesson and save it in one step: checkpoints, version metadata, then title.",
		Args:  cobra.ExactArgs(1),
		Run:   runLessonEdit,
	}
	edit.Flags().String("title", "", "Lesson title")
	edit.Flags().String("video-url", "", "Video URL")
	edit.Flags().String("difficulty", "", "Beginner, Intermediate, Advanced or Professional")
	edit.Flags().String("vocab", "", "Comma-separated target vocabulary ids")

	update := &cobra.Command{
		Use:   "update <lesson-id>",
		Short: "Change lesson fields directly",
		Args:  cobra.ExactArgs(1),
		Run:   runLessonUpdate,
	}
	update.Flags().String("title", "", "Title")
	update.Flags().String("desc", "", "Description")
	update.Flags().Int("order", 0, "Display order within the unit")

	rm := &cobra.Command{
		Use:   "rm <lesson-id>",
		Short: "Delete a lesson with its versions and checkpoints",
		Args:  cobra.ExactArgs(1),
		Run:   runLessonRm,
	}

	lessonCmd.AddCommand(add, show, edit, update, rm)
	RootCmd.AddCommand(lessonCmd)
}

func runLessonAdd(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	desc, _ := cmd.Flags().GetString("desc")

	requireAuthor()
	s, svc := openContent(cmd.Context())
	defer s.Close()

	ln, err := svc.AddLesson(cmd.Context(), args[0], store.LessonParams{Title: title, Description: desc})
	if err != nil {
		exitErr("lesson add", err)
	}
	printJSON(ln)
}

func runLessonShow(cmd *cobra.Command, args []string) {
	s, svc := openContent(cmd.Context())
	defer s.Close()

	ln, ok := svc.Lesson(args[0])
	if !ok {
		exitErr("lesson show", fmt.Errorf("lesson %s: %w", args[0], store.ErrNotFound))
	}
	printJSON(ln)
}

func runLessonEdit(cmd *cobra.Command, args []string) {
	s, sess := openStudio(cmd.Context(), args[0])
	defer s.Close()

	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		sess.SetTitle(v)
	}
	if cmd.Flags().Changed("video-url") {
		v, _ := cmd.Flags().GetString("video-url")
		sess.SetVideoURL(v)
	}
	if cmd.Flags().Changed("difficulty") {
		v, _ := cmd.Flags().GetString("difficulty")
		if err := sess.SetDifficulty(v); err != nil {
			exitErr("lesson edit", err)
		}
	}
	if cmd.Flags().Changed("vocab") {
		v, _ := cmd.Flags().GetString("vocab")
		if unknown := sess.SetVocabulary(splitList(v)); len(unknown) > 0 {
			fmt.Fprintf(os.Stderr, "warning: unknown vocabulary ids skipped: %s\n", strings.Join(unknown, ", "))
		}
	}

	saveAndPrint(cmd, sess)
}

func runLessonUpdate(cmd *cobra.Command, args []string) {
	var p store.LessonPatch
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		p.Title = &v
	}
	if cmd.Flags().Changed("desc") {
		v, _ := cmd.Flags().GetString("desc")
		p.Description = &v
	}
	if cmd.Flags().Changed("order") {
		v, _ := cmd.Flags().GetInt("order")
		p.Order = &v
	}

	requireAuthor()
	s, svc := openContent(cmd.Context())
	defer s.Close()

	if err := svc.UpdateLesson(cmd.Context(), args[0], p); err != nil {
		exitErr("lesson update", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
}

func runLessonRm(cmd *cobra.Command, args []string) {
	requireAuthor()
	s, svc := openContent(cmd.Context())
	defer s.Close()

	if err := svc.DeleteLesson(cmd.Context(), args[0]); err != nil {
		exitErr("lesson rm", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
