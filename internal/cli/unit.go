package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/rcliao/lesson-studio/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Manage units",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a unit at the end of its category",
		Run:   runUnitAdd,
	}
	add.Flags().String("title", "", "Title (required)")
	add.Flags().String("desc", "", "Description")
	add.Flags().String("category", "", "Category id")
	add.Flags().Bool("unpublished", false, "Create the unit unpublished")
	add.MarkFlagRequired("title")

	update := &cobra.Command{
		Use:   "update <unit-id>",
		Short: "Change unit fields",
		Args:  cobra.ExactArgs(1),
		Run:   runUnitUpdate,
	}
	update.Flags().String("title", "", "Title")
	update.Flags().String("desc", "", "Description")
	update.Flags().String("category", "", "Category id")
	update.Flags().Bool("published", true, "Published")

	rm := &cobra.Command{
		Use:   "rm <unit-id>",
		Short: "Delete a unit with its lessons and checkpoints",
		Args:  cobra.ExactArgs(1),
		Run:   runUnitRm,
	}

	cmd.AddCommand(add, update, rm)
	RootCmd.AddCommand(cmd)
}

func runUnitAdd(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	desc, _ := cmd.Flags().GetString("desc")
	category, _ := cmd.Flags().GetString("category")
	unpublished, _ := cmd.Flags().GetBool("unpublished")

	requireAuthor()
	s, svc := openContent(cmd.Context())
	defer s.Close()

	u, err := svc.CreateUnit(cmd.Context(), store.UnitParams{
		Title:       title,
		Description: desc,
		CategoryID:  category,
		IsPublished: lo.ToPtr(!unpublished),
	})
	if err != nil {
		exitErr("unit add", err)
	}
	printJSON(u)
}

func runUnitUpdate(cmd *cobra.Command, args []string) {
	var p store.UnitPatch
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		p.Title = &v
	}
	if cmd.Flags().Changed("desc") {
		v, _ := cmd.Flags().GetString("desc")
		p.Description = &v
	}
	if cmd.Flags().Changed("category") {
		v, _ := cmd.Flags().GetString("category")
		p.CategoryID = &v
	}
	if cmd.Flags().Changed("published") {
		v, _ := cmd.Flags().GetBool("published")
		p.IsPublished = &v
	}

	requireAuthor()
	s, svc := openContent(cmd.Context())
	defer s.Close()

	if err := svc.UpdateUnit(cmd.Context(), args[0], p); err != nil {
		exitErr("unit update", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
}

func runUnitRm(cmd *cobra.Command, args []string) {
	requireAuthor()
	s, svc := openContent(cmd.Context())
	defer s.Close()

	if err := svc.DeleteUnit(cmd.Context(), args[0]); err != nil {
		exitErr("unit rm", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
}
