package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"gitlet/core/apperrors"
	"gitlet/forge"
)

var out = NewOutput()

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "Gitlet - a small local version control system",
	Long: `Gitlet keeps snapshots of the files in a single directory, with
branches, a staging area and three-way merges.

State lives in the .gitlet directory of the working tree.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		out.Info("Please enter a command.")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(globalLogCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(rmBranchCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(checkCmd)
}

// openRepo opens the repository in the current directory or exits.
func openRepo() *forge.Repository {
	repo, err := forge.Open(".")
	if err != nil {
		fail(err)
	}
	return repo
}

// fail prints err and exits. Engine failures print their user message;
// anything else is an internal error.
func fail(err error) {
	var re apperrors.RepoError
	if errors.As(err, &re) {
		out.Error(re.UserMessage())
	} else {
		out.Error("Error: " + err.Error())
	}
	os.Exit(1)
}
