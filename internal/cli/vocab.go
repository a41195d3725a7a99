package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/lesson-studio/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage vocabulary",
	}

	put := &cobra.Command{
		Use:   "put",
		Short: "Create or update a vocabulary word",
		Run:   runVocabPut,
	}
	put.Flags().String("id", "", "Vocabulary id (generated when empty)")
	put.Flags().String("word", "", "Word (required)")
	put.Flags().String("meaning", "", "Meaning")
	put.Flags().String("category", "", "Category id")
	put.MarkFlagRequired("word")

	list := &cobra.Command{
		Use:   "list",
		Short: "List vocabulary",
		Run:   runVocabList,
	}

	cmd.AddCommand(put, list)
	RootCmd.AddCommand(cmd)
}

func runVocabPut(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	word, _ := cmd.Flags().GetString("word")
	meaning, _ := cmd.Flags().GetString("meaning")
	category, _ := cmd.Flags().GetString("category")

	requireAuthor()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	v, err := s.PutVocabulary(cmd.Context(), model.Vocabulary{ID: id, Word: word, Meaning: meaning, CategoryID: category})
	if err != nil {
		exitErr("vocab put", err)
	}
	printJSON(v)
}

func runVocabList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	words, err := s.ListVocabulary(cmd.Context())
	if err != nil {
		exitErr("vocab list", err)
	}

	if textOutput() {
		for _, v := range words {
			fmt.Printf("%-28s %s  %s\n", v.ID, color.New(color.FgCyan).Sprint(v.Word), v.Meaning)
		}
		return
	}
	printJSON(words)
}
