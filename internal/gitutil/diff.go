// ABOUTME: Per-commit diff extraction: changed-file rows plus the unified patch text
package gitutil

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

// CommitDiff extracts the changed-file list and unified patch text for
// commit against its first parent. A root commit (no parents) diffs
// against an empty tree, matching what `git show` reports for it.
// Paths excluded by config are omitted from both the file list and the
// patch text; binary deltas stay in the file list but never reach the
// patch text. The returned patch text is empty once it would exceed
// config.MaxPatchBytes — the caller decides whether an empty patch
// means "no patch row."
func CommitDiff(commit *object.Commit, config commitmux.IgnoreConfig) (files []*commitmux.CommitFile, patchText string, err error) {
	commitTree, err := commit.Tree()
	if err != nil {
		return nil, "", commitmux.NewError(commitmux.KindGit, "load commit tree", err)
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, "", commitmux.NewError(commitmux.KindGit, "load parent commit", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, "", commitmux.NewError(commitmux.KindGit, "load parent tree", err)
		}
	} else {
		parentTree = &object.Tree{}
	}

	changes, err := parentTree.Diff(commitTree)
	if err != nil {
		return nil, "", commitmux.NewError(commitmux.KindGit, "diff trees", err)
	}

	patch, err := changes.Patch()
	if err != nil {
		return nil, "", commitmux.NewError(commitmux.KindGit, "build patch", err)
	}

	var sb strings.Builder
	overBudget := false
	filePatches := patch.FilePatches()
	for i, change := range changes {
		cf := changeToCommitFile(change)
		if isIgnored(cf.Path, config.PathPrefixes) {
			continue
		}
		files = append(files, cf)

		if overBudget || i >= len(filePatches) || filePatches[i].IsBinary() {
			continue
		}
		var fileSb strings.Builder
		writeFilePatch(&fileSb, filePatches[i])
		if sb.Len()+fileSb.Len() > config.MaxPatchBytes {
			overBudget = true
			continue
		}
		sb.WriteString(fileSb.String())
	}

	if overBudget {
		return files, "", nil
	}
	return files, sb.String(), nil
}

func isIgnored(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func changeToCommitFile(change *object.Change) *commitmux.CommitFile {
	cf := &commitmux.CommitFile{}

	fromEmpty := change.From.Name == ""
	toEmpty := change.To.Name == ""

	switch {
	case fromEmpty && !toEmpty:
		cf.Path = change.To.Name
		cf.Status = commitmux.FileAdded
	case !fromEmpty && toEmpty:
		cf.Path = change.From.Name
		cf.Status = commitmux.FileDeleted
	case change.From.Name != change.To.Name:
		cf.Path = change.To.Name
		old := change.From.Name
		cf.OldPath = &old
		cf.Status = commitmux.FileRenamed
	default:
		cf.Path = change.To.Name
		cf.Status = commitmux.FileModified
	}
	return cf
}

// writeFilePatch renders one file's unified diff. Binary files are
// skipped by the caller before reaching here; the patch blob never
// carries binary content, only a record that the file changed.
func writeFilePatch(sb *strings.Builder, fp diff.FilePatch) {
	from, to := fp.Files()
	fromPath, toPath := "/dev/null", "/dev/null"
	if from != nil {
		fromPath = "a/" + from.Path()
	}
	if to != nil {
		toPath = "b/" + to.Path()
	}
	sb.WriteString("diff --git " + fromPath + " " + toPath + "\n")
	sb.WriteString("--- " + fromPath + "\n")
	sb.WriteString("+++ " + toPath + "\n")

	for _, chunk := range fp.Chunks() {
		prefix := " "
		switch chunk.Type() {
		case diff.Add:
			prefix = "+"
		case diff.Delete:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimSuffix(chunk.Content(), "\n"), "\n") {
			sb.WriteString(prefix + line + "\n")
		}
	}
}
