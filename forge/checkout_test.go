package forge

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gitlet/core/apperrors"
	"gitlet/pkg/storage/worktree"
)

func TestCheckoutBranch(t *testing.T) {
	f := newFixture(t)
	f.commitFiles(t, "base", map[string]string{"a.txt": "a"})

	if err := f.repo.Branch("feature"); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}
	f.checkout(t, "feature")
	f.commitFiles(t, "feature work", map[string]string{"a.txt": "a-feature", "b.txt": "b"})

	f.checkout(t, "master")
	if f.work.Exists("b.txt") {
		t.Error("Expected b.txt to be removed when leaving feature")
	}
	if got := f.read(t, "a.txt"); got != "a" {
		t.Errorf("a.txt = %q, want %q", got, "a")
	}
	if branch, _ := f.repo.CurrentBranch(); branch != "master" {
		t.Errorf("CurrentBranch() = %q, want master", branch)
	}

	f.checkout(t, "feature")
	if got := f.read(t, "b.txt"); got != "b" {
		t.Errorf("b.txt = %q, want %q", got, "b")
	}

	if err := f.repo.CheckoutBranch("feature"); !errors.Is(err, apperrors.ErrNoOpCheckout) {
		t.Errorf("Expected NoOpCheckout, got %v", err)
	}
	if err := f.repo.CheckoutBranch("ghost"); !errors.Is(err, apperrors.ErrNoSuchBranch) {
		t.Errorf("Expected NoSuchBranch, got %v", err)
	}
}

func TestCheckoutBranchClearsIndex(t *testing.T) {
	f := newFixture(t)
	f.commitFiles(t, "base", map[string]string{"a.txt": "a"})
	if err := f.repo.Branch("other"); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}

	f.write(t, "staged.txt", "s")
	if err := f.repo.Add("staged.txt"); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}
	f.checkout(t, "other")

	if !f.repo.Index().IsEmpty() {
		t.Error("Expected checkout to clear the index")
	}
	if got := f.read(t, "staged.txt"); got != "s" {
		t.Error("Expected files untracked by both commits to stay on disk")
	}
}

func TestCheckoutFileAt(t *testing.T) {
	f := newFixture(t)
	c1 := f.commitFiles(t, "v1", map[string]string{"a.txt": "one"})
	f.commitFiles(t, "v2", map[string]string{"a.txt": "two"})

	if err := f.repo.CheckoutFileAt(string(c1.ID[:8]), "a.txt"); err != nil {
		t.Fatalf("Failed to checkout from commit: %v", err)
	}
	if got := f.read(t, "a.txt"); got != "one" {
		t.Errorf("a.txt = %q, want %q", got, "one")
	}
	if ix := f.repo.Index(); !ix.IsEmpty() {
		t.Error("Expected single-file checkout to leave the index alone")
	}

	if err := f.repo.CheckoutFileAt(string(c1.ID), "b.txt"); !errors.Is(err, apperrors.ErrFileNotInCommit) {
		t.Errorf("Expected FileNotInCommit, got %v", err)
	}
	if err := f.repo.CheckoutFileAt("0000000", "a.txt"); !errors.Is(err, apperrors.ErrNoSuchCommit) {
		t.Errorf("Expected NoSuchCommit, got %v", err)
	}
}

func TestUntrackedFileInTheWay(t *testing.T) {
	f := newFixture(t)
	if err := f.repo.Branch("feature"); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}
	f.checkout(t, "feature")
	featureTip := f.commitFiles(t, "add f", map[string]string{"f.txt": "from feature"})
	f.checkout(t, "master")
	masterTip := f.tip(t, "master")

	f.write(t, "f.txt", "local")

	if err := f.repo.CheckoutBranch("feature"); !errors.Is(err, apperrors.ErrUntrackedFileInTheWay) {
		t.Errorf("CheckoutBranch: expected UntrackedFileInTheWay, got %v", err)
	}
	if err := f.repo.Reset(string(featureTip.ID)); !errors.Is(err, apperrors.ErrUntrackedFileInTheWay) {
		t.Errorf("Reset: expected UntrackedFileInTheWay, got %v", err)
	}
	if _, err := f.repo.Merge("feature"); !errors.Is(err, apperrors.ErrUntrackedFileInTheWay) {
		t.Errorf("Merge: expected UntrackedFileInTheWay, got %v", err)
	}
	if err := f.repo.CheckoutFileAt(string(featureTip.ID), "f.txt"); !errors.Is(err, apperrors.ErrUntrackedFileInTheWay) {
		t.Errorf("CheckoutFileAt: expected UntrackedFileInTheWay, got %v", err)
	}

	if got := f.read(t, "f.txt"); got != "local" {
		t.Errorf("f.txt = %q, want the untouched local copy", got)
	}
	if branch, _ := f.repo.CurrentBranch(); branch != "master" {
		t.Errorf("CurrentBranch() = %q, want master", branch)
	}
	if f.tip(t, "master") != masterTip {
		t.Error("Expected master to stay put")
	}
	if !f.repo.Index().IsEmpty() {
		t.Error("Expected the index to stay empty")
	}

	// Once staged the file is no longer untracked.
	if err := f.repo.Add("f.txt"); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}
	f.checkout(t, "feature")
	if got := f.read(t, "f.txt"); got != "from feature" {
		t.Errorf("f.txt = %q, want %q", got, "from feature")
	}
}

func TestIgnoredFilesDoNotBlockCheckout(t *testing.T) {
	f := newFixture(t)
	if err := f.repo.Branch("feature"); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}
	f.checkout(t, "feature")
	f.commitFiles(t, "add notes", map[string]string{"notes.txt": "n"})
	f.checkout(t, "master")

	f.write(t, "Thumbs.db", "cache")
	f.checkout(t, "feature")
	if !f.work.Exists("Thumbs.db") {
		t.Error("Expected ignored files to be left alone")
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	c1 := f.commitFiles(t, "c1", map[string]string{"a.txt": "1"})
	f.commitFiles(t, "c2", map[string]string{"a.txt": "2", "b.txt": "b"})

	f.write(t, "c.txt", "staged")
	if err := f.repo.Add("c.txt"); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}

	if err := f.repo.Reset(string(c1.ID[:10])); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	if f.tip(t, "master") != c1.ID {
		t.Error("Expected master to point at c1")
	}
	if got := f.read(t, "a.txt"); got != "1" {
		t.Errorf("a.txt = %q, want %q", got, "1")
	}
	if f.work.Exists("b.txt") {
		t.Error("Expected b.txt to be removed")
	}
	if !f.repo.Index().IsEmpty() {
		t.Error("Expected reset to clear the index")
	}

	if err := f.repo.Reset("ffffffffff"); !errors.Is(err, apperrors.ErrNoSuchCommit) {
		t.Errorf("Expected NoSuchCommit, got %v", err)
	}
}

func TestRecoverFinishesInterruptedReset(t *testing.T) {
	f := newFixture(t)
	c1 := f.commitFiles(t, "c1", map[string]string{"a.txt": "1"})
	c2 := f.commitFiles(t, "c2", map[string]string{"a.txt": "2", "b.txt": "b"})

	// Simulate a crash right after the journal entry was written.
	if err := f.repo.journal.Begin(worktree.JournalEntry{
		From: c2.ID, To: c1.ID, Branch: "master", Mode: worktree.ModeReset,
	}); err != nil {
		t.Fatalf("Failed to begin journal: %v", err)
	}

	recovered, err := f.repo.Recover()
	if err != nil {
		t.Fatalf("Failed to recover: %v", err)
	}
	if !recovered {
		t.Fatal("Expected a pending entry to be recovered")
	}
	if f.tip(t, "master") != c1.ID {
		t.Error("Expected master to be moved to c1")
	}
	if got := f.read(t, "a.txt"); got != "1" {
		t.Errorf("a.txt = %q, want %q", got, "1")
	}
	if f.work.Exists("b.txt") {
		t.Error("Expected b.txt to be removed")
	}

	if recovered, err := f.repo.Recover(); err != nil || recovered {
		t.Errorf("Expected nothing left to recover, got %v, %v", recovered, err)
	}
}

func TestBranchCommands(t *testing.T) {
	f := newFixture(t)

	if err := f.repo.Branch("feature"); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}
	if err := f.repo.Branch("feature"); !errors.Is(err, apperrors.ErrBranchAlreadyExists) {
		t.Errorf("Expected BranchAlreadyExists, got %v", err)
	}
	if err := f.repo.Branch("bad name"); !errors.Is(err, apperrors.ErrInvalidBranchName) {
		t.Errorf("Expected InvalidBranchName, got %v", err)
	}
	if f.tip(t, "feature") != f.tip(t, "master") {
		t.Error("Expected the new branch to start at HEAD")
	}

	if err := f.repo.RmBranch("master"); !errors.Is(err, apperrors.ErrCannotRemoveActiveBranch) {
		t.Errorf("Expected CannotRemoveActiveBranch, got %v", err)
	}
	if err := f.repo.RmBranch("feature"); err != nil {
		t.Fatalf("Failed to remove branch: %v", err)
	}
	err := f.repo.RmBranch("feature")
	if !errors.Is(err, apperrors.ErrNoSuchBranch) {
		t.Fatalf("Expected NoSuchBranch, got %v", err)
	}
	var re apperrors.RepoError
	errors.As(err, &re)
	if re.UserMessage() != "A branch with that name does not exist." {
		t.Errorf("UserMessage() = %q", re.UserMessage())
	}

	names, current, err := f.repo.Branches()
	if err != nil || current != "master" || len(names) != 1 {
		t.Errorf("Branches() = %v, %q, %v", names, current, err)
	}
}

func TestCheckoutFileKeepsTmpSiblingOnDisk(t *testing.T) {
	root := t.TempDir()
	repo, err := Initialize(root, nil)
	if err != nil {
		t.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("v1\n"), 0644); err != nil {
		t.Fatalf("Failed to write a.txt: %v", err)
	}
	if err := repo.Add("a.txt"); err != nil {
		t.Fatalf("Failed to add a.txt: %v", err)
	}
	if _, err := repo.Commit("add a"); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	for _, name := range []string{"a.txt.tmp", "build.tmp"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("user data\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("edited\n"), 0644); err != nil {
		t.Fatalf("Failed to edit a.txt: %v", err)
	}

	if err := repo.CheckoutFile("a.txt"); err != nil {
		t.Fatalf("Failed to check out a.txt: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "a.txt.tmp"))
	if err != nil {
		t.Fatalf("Expected a.txt.tmp to survive checkout: %v", err)
	}
	if string(got) != "user data\n" {
		t.Errorf("a.txt.tmp = %q, want %q", got, "user data\n")
	}
	restored, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatalf("Failed to read a.txt: %v", err)
	}
	if string(restored) != "v1\n" {
		t.Errorf("a.txt = %q, want %q", restored, "v1\n")
	}

	st, err := repo.Status()
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if !reflect.DeepEqual(st.Untracked, []string{"a.txt.tmp", "build.tmp"}) {
		t.Errorf("Untracked = %v, want [a.txt.tmp build.tmp]", st.Untracked)
	}

	if err := repo.Add("build.tmp"); err != nil {
		t.Errorf("Failed to add build.tmp: %v", err)
	}
}
