package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/lesson-studio/internal/media"
	"github.com/rcliao/lesson-studio/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "upload-video <lesson-id> <file>",
		Short: "Upload a video and attach it to the lesson's current version",
		Long:  "Upload a video to the media directory, or to Cloud Storage when a bucket is configured, and set the current version's video URL.",
		Args:  cobra.ExactArgs(2),
		Run:   runUploadVideo,
	}
	cmd.Flags().Int("duration", 0, "Video duration in seconds")

	lessonCmd.AddCommand(cmd)
}

func newUploader(ctx context.Context) (media.Uploader, func(), error) {
	if cfg.GCSBucket == "" {
		return &media.LocalUploader{Dir: cfg.MediaDir, BaseURL: cfg.MediaBaseURL}, func() {}, nil
	}
	u, err := media.NewGCSUploader(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSEmulator)
	if err != nil {
		return nil, nil, err
	}
	return u, func() { u.Close() }, nil
}

func runUploadVideo(cmd *cobra.Command, args []string) {
	lessonID, file := args[0], args[1]
	ctx := cmd.Context()

	requireAuthor()
	s, svc := openContent(ctx)
	defer s.Close()

	ln, ok := svc.Lesson(lessonID)
	if !ok || ln.Version == nil {
		exitErr("upload-video", fmt.Errorf("lesson %s: %w", lessonID, store.ErrNotFound))
	}

	f, err := os.Open(file)
	if err != nil {
		exitErr("open video", err)
	}
	defer f.Close()

	uploader, closeFn, err := newUploader(ctx)
	if err != nil {
		exitErr("media", err)
	}
	defer closeFn()

	url, err := uploader.Upload(ctx, media.ObjectKey(lessonID, file), f)
	if err != nil {
		exitErr("upload-video", err)
	}
	logger.Info("video uploaded", zap.String("lesson_id", lessonID), zap.String("url", url))

	p := store.VersionPatch{VideoURL: &url}
	if cmd.Flags().Changed("duration") {
		d, _ := cmd.Flags().GetInt("duration")
		p.DurationSec = &d
	}
	if err := svc.UpdateLessonVersion(ctx, ln.Version.ID, p); err != nil {
		exitErr("upload-video", err)
	}
	fmt.Printf(`{"ok":true,"lesson_id":%q,"video_url":%q}`+"\n", lessonID, url)
}
