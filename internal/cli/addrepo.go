// ABOUTME: add-repo subcommand — registers a local path or clones a remote URL
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/gitutil"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var (
	addRepoName   string
	addRepoURL    string
	addRepoExclude []string
	addRepoForkOf string
	addRepoAuthor string
)

var addRepoCmd = &cobra.Command{
	Use:   "add-repo [path]",
	Short: "Register a repo for indexing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var localPath string
		if len(args) > 0 {
			localPath = args[0]
		}
		if localPath != "" && addRepoURL != "" {
			return fmt.Errorf("a local path and --url are mutually exclusive")
		}

		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		var forkOf, author *string
		if addRepoForkOf != "" {
			forkOf = &addRepoForkOf
		}
		if addRepoAuthor != "" {
			author = &addRepoAuthor
		}

		if addRepoURL != "" {
			return addRemoteRepo(cmd, db, addRepoURL, forkOf, author)
		}
		if localPath != "" {
			return addLocalRepo(cmd, db, localPath, forkOf, author)
		}
		return fmt.Errorf("either a local path or --url must be provided:\n  commitmux add-repo <PATH>\n  commitmux add-repo --url <URL>")
	},
}

func addRemoteRepo(cmd *cobra.Command, db *store.Store, remoteURL string, forkOf, author *string) error {
	derived := strings.TrimSuffix(filepath.Base(strings.TrimRight(remoteURL, "/")), ".git")
	name := addRepoName
	if name == "" {
		name = derived
	}

	cloneDir := cliutil.UniqueClonePath(name)
	fmt.Fprintf(cmd.OutOrStdout(), "Cloning %s from %s...\n", name, remoteURL)

	if err := os.MkdirAll(cloneDir, 0o755); err != nil {
		return fmt.Errorf("failed to create clone directory %s: %w", cloneDir, err)
	}
	if _, err := gitutil.CloneOrFetch(context.Background(), cloneDir, remoteURL); err != nil {
		return fmt.Errorf("failed to clone '%s' from '%s': %w", name, remoteURL, err)
	}

	if _, err := db.AddRepo(&commitmux.RepoInput{
		Name:            name,
		LocalPath:       cloneDir,
		RemoteURL:       &remoteURL,
		ForkOf:          forkOf,
		AuthorFilter:    author,
		ExcludePrefixes: addRepoExclude,
	}); err != nil {
		return friendlyAddRepoErr(name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added repo '%s' at %s\n", name, cloneDir)
	return nil
}

func addLocalRepo(cmd *cobra.Command, db *store.Store, localPath string, forkOf, author *string) error {
	canonical, err := filepath.Abs(localPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", localPath, err)
	}

	if _, err := gitutil.Open(canonical); err != nil {
		return fmt.Errorf("'%s' is not a git repository.", canonical)
	}

	name := addRepoName
	if name == "" {
		name = filepath.Base(canonical)
	}

	if _, err := db.AddRepo(&commitmux.RepoInput{
		Name:            name,
		LocalPath:       canonical,
		ForkOf:          forkOf,
		AuthorFilter:    author,
		ExcludePrefixes: addRepoExclude,
	}); err != nil {
		return friendlyAddRepoErr(name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added repo '%s' at %s\n", name, canonical)
	return nil
}

// friendlyAddRepoErr suppresses the raw store/constraint error chain for
// the one failure an operator hits routinely — registering a name twice —
// per spec.md section 7's exact wording.
func friendlyAddRepoErr(name string, err error) error {
	if commitmux.IsKind(err, commitmux.KindAlreadyExists) {
		return fmt.Errorf("A repo named '%s' already exists. Use 'commitmux status' to see all repos.", name)
	}
	return fmt.Errorf("failed to add repo '%s': %w", name, err)
}

func init() {
	addRepoCmd.Flags().StringVar(&addRepoName, "name", "", "Repo name (default: derived from path/URL)")
	addRepoCmd.Flags().StringVar(&addRepoURL, "url", "", "Clone a remote repo instead of using a local path")
	addRepoCmd.Flags().StringArrayVar(&addRepoExclude, "exclude", nil, "Path prefix to exclude from indexing (repeatable)")
	addRepoCmd.Flags().StringVar(&addRepoForkOf, "fork-of", "", "Upstream remote URL whose history should be hidden")
	addRepoCmd.Flags().StringVar(&addRepoAuthor, "author", "", "Only index commits by this author email")
	rootCmd.AddCommand(addRepoCmd)
}
