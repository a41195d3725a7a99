package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Manage lesson versions",
	}

	set := &cobra.Command{
		Use:   "set <lesson-id>",
		Short: "Change fields of the lesson's current version",
		Args:  cobra.ExactArgs(1),
		Run:   runVersionSet,
	}
	set.Flags().String("status", "", "draft, published or archived")
	set.Flags().Int("duration", 0, "Video duration in seconds")
	set.Flags().String("video-url", "", "Video URL")
	set.Flags().String("difficulty", "", "Difficulty label or code")
	set.Flags().String("vocab", "", "Comma-separated target vocabulary ids")

	cmd.AddCommand(set)
	RootCmd.AddCommand(cmd)
}

func runVersionSet(cmd *cobra.Command, args []string) {
	var p store.VersionPatch
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		st := model.VersionStatus(v)
		p.Status = &st
	}
	if cmd.Flags().Changed("duration") {
		v, _ := cmd.Flags().GetInt("duration")
		p.DurationSec = &v
	}
	if cmd.Flags().Changed("video-url") {
		v, _ := cmd.Flags().GetString("video-url")
		p.VideoURL = &v
	}
	if cmd.Flags().Changed("difficulty") {
		v, _ := cmd.Flags().GetString("difficulty")
		d, err := model.ParseDifficulty(v)
		if err != nil {
			exitErr("version set", err)
		}
		p.Difficulty = &d
	}
	if cmd.Flags().Changed("vocab") {
		v, _ := cmd.Flags().GetString("vocab")
		ids := splitList(v)
		p.VocabIDs = &ids
	}

	requireAuthor()
	s, svc := openContent(cmd.Context())
	defer s.Close()

	ln, ok := svc.Lesson(args[0])
	if !ok {
		exitErr("version set", fmt.Errorf("lesson %s: %w", args[0], store.ErrNotFound))
	}
	if ln.Version == nil {
		exitErr("version set", fmt.Errorf("lesson %s has no version", args[0]))
	}
	if err := svc.UpdateLessonVersion(cmd.Context(), ln.Version.ID, p); err != nil {
		exitErr("version set", err)
	}
	ln, _ = svc.Lesson(args[0])
	printJSON(ln)
}
