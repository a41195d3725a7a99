package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show units, lessons and their current versions",
		Run:   runTree,
	}

	RootCmd.AddCommand(cmd)
}

func runTree(cmd *cobra.Command, args []string) {
	s, svc := openContent(cmd.Context())
	defer s.Close()

	if textOutput() {
		renderTree(os.Stdout, svc.Tree())
		return
	}
	printJSON(svc.Tree())
}
