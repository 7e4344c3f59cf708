package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gitlet/core/apperrors"
	"gitlet/core/health"
	"gitlet/forge"
)

// withRepo runs fn against the repository in the current directory,
// closing it before reporting any failure.
func withRepo(fn func(repo *forge.Repository) error) {
	repo := openRepo()
	err := fn(repo)
	repo.Close()
	if err != nil {
		fail(err)
	}
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a repository in the current directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root, err := filepath.Abs(".")
		if err != nil {
			fail(err)
		}
		repo, err := forge.Initialize(root, nil)
		if err != nil {
			fail(err)
		}
		repo.Close()
		out.Success("Initialized empty Gitlet repository in " + out.Highlight(filepath.Join(root, forge.MetaDir)))
	},
}

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Stage a file for the next commit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			return repo.Add(args[0])
		})
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Record the staged changes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		message := ""
		if len(args) > 0 {
			message = args[0]
		}
		withRepo(func(repo *forge.Repository) error {
			_, err := repo.Commit(message)
			return err
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Unstage a file, or stage a tracked file for removal",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			return repo.Rm(args[0])
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of the current branch",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			history, err := repo.Log()
			if err != nil {
				return err
			}
			return forge.WriteLog(out.Writer(), history)
		})
	},
}

var globalLogCmd = &cobra.Command{
	Use:   "global-log",
	Short: "Show every commit ever made",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			commits, err := repo.GlobalLog()
			if err != nil {
				return err
			}
			return forge.WriteLog(out.Writer(), commits)
		})
	},
}

var findCmd = &cobra.Command{
	Use:   "find <message>",
	Short: "Print the ids of commits whose message contains the text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			ids, err := repo.Find(args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				out.Info(id.String())
			}
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branches, staged files and working tree changes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			st, err := repo.Status()
			if err != nil {
				return err
			}
			return forge.WriteStatus(out.Writer(), st)
		})
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch> | -- <file> | <commit> -- <file>",
	Short: "Switch branches or restore a file",
	Long: `checkout <branch>            replace the working tree with the branch tip
checkout -- <file>          restore a file from the current commit
checkout <commit> -- <file> restore a file from the given commit`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		dash := cmd.ArgsLenAtDash()
		withRepo(func(repo *forge.Repository) error {
			switch {
			case dash == -1 && len(args) == 1:
				return repo.CheckoutBranch(args[0])
			case dash == 0 && len(args) == 1:
				return repo.CheckoutFile(args[0])
			case dash == 1 && len(args) == 2:
				return repo.CheckoutFileAt(args[0], args[1])
			default:
				return errors.New("incorrect operands")
			}
		})
	},
}

var branchCmd = &cobra.Command{
	Use:   "branch <name>",
	Short: "Create a branch at the current commit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			return repo.Branch(args[0])
		})
	},
}

var rmBranchCmd = &cobra.Command{
	Use:   "rm-branch <name>",
	Short: "Delete a branch label",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			return repo.RmBranch(args[0])
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <commit>",
	Short: "Move the current branch to a commit and check it out",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			return repo.Reset(args[0])
		})
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			result, err := repo.Merge(args[0])
			if errors.Is(err, apperrors.ErrGivenBranchIsAncestor) {
				out.Notice(apperrors.DefaultMessage(apperrors.KindGivenBranchIsAncestor))
				return nil
			}
			if err != nil {
				return err
			}

			switch {
			case result.FastForwarded:
				out.Notice("Current branch fast-forwarded.")
			case len(result.Conflicts) > 0:
				out.Notice("Encountered a merge conflict.")
			}
			return nil
		})
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff [files...]",
	Short: "Show unstaged changes as unified diffs",
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			diffs, err := repo.Diff(args...)
			if err != nil {
				return err
			}
			for _, d := range diffs {
				if d.Text != "" {
					fmt.Fprint(out.Writer(), d.Text)
				}
			}
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show object store statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			st, err := repo.Stats()
			if err != nil {
				return err
			}
			out.Info(fmt.Sprintf("Commits: %s", humanize.Comma(int64(st.Commits))))
			out.Info(fmt.Sprintf("Blobs:   %s", humanize.Comma(int64(st.Blobs))))
			out.Info(fmt.Sprintf("Size:    %s", humanize.Bytes(uint64(st.Bytes))))
			return nil
		})
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the commit catalog from the object store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			n, err := repo.Reindex()
			if err != nil {
				return err
			}
			out.Success(fmt.Sprintf("Indexed %s commits", humanize.Comma(int64(n))))
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify objects, refs and the index",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRepo(func(repo *forge.Repository) error {
			report, err := repo.Check()
			if err != nil {
				return err
			}
			switch report.OverallStatus {
			case health.Healthy:
				out.Success(report.Summary)
				return nil
			case health.Degraded:
				out.Notice(report.String())
				return nil
			default:
				return errors.New(report.String())
			}
		})
	},
}
