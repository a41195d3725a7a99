package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/lesson-studio/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage unit categories",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a category",
		Run:   runCategoryAdd,
	}
	add.Flags().String("name", "", "Category name (required)")
	add.Flags().String("color", "", "Display color, e.g. #e67e22")
	add.Flags().Int("sort", 0, "Sort order")
	add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		Run:   runCategoryList,
	}

	cmd.AddCommand(add, list)
	RootCmd.AddCommand(cmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	colorCode, _ := cmd.Flags().GetString("color")
	sortOrder, _ := cmd.Flags().GetInt("sort")

	requireAuthor()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.CreateCategory(cmd.Context(), store.CategoryParams{Name: name, ColorCode: colorCode, SortOrder: sortOrder})
	if err != nil {
		exitErr("category add", err)
	}
	printJSON(c)
}

func runCategoryList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cats, err := s.ListCategories(cmd.Context())
	if err != nil {
		exitErr("category list", err)
	}

	if textOutput() {
		for _, c := range cats {
			fmt.Printf("%s  %s %s\n", c.ID, color.New(color.Bold).Sprint(c.Name), color.New(color.FgHiBlack).Sprint(c.ColorCode))
		}
		return
	}
	printJSON(cats)
}
