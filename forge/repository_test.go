package forge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlet/core/apperrors"
	"gitlet/core/config"
	"gitlet/core/objects"
	"gitlet/core/refs"
	"gitlet/core/stage"
	"gitlet/pkg/storage/objectstore"
	"gitlet/pkg/storage/worktree"
)

type fixture struct {
	repo    *Repository
	work    *worktree.Memory
	backend *objectstore.MemoryBackend
	refs    *refs.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tick := 0
	clock := func() time.Time {
		tick++
		return time.Date(2024, time.March, 1, 12, 0, tick, 0, time.UTC)
	}

	f := &fixture{
		work:    worktree.NewMemory(),
		backend: objectstore.NewMemoryBackend(),
		refs:    refs.NewMemory(),
	}
	repo, err := New(Options{
		Objects:  f.backend,
		Hash:     objects.SHA1,
		Refs:     f.refs,
		Stage:    stage.NewMemoryStore(),
		Worktree: f.work,
		Journal:  worktree.NewFileJournal(filepath.Join(t.TempDir(), "journal.json")),
		Clock:    clock,
	})
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	if err := repo.Init(); err != nil {
		t.Fatalf("Failed to init repository: %v", err)
	}
	f.repo = repo
	return f
}

func (f *fixture) write(t *testing.T, name, content string) {
	t.Helper()
	if err := f.work.Write(name, []byte(content)); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := f.work.Read(name)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return string(data)
}

// commitFiles writes, stages and commits the given files.
func (f *fixture) commitFiles(t *testing.T, message string, files map[string]string) *objects.Commit {
	t.Helper()
	for name, content := range files {
		f.write(t, name, content)
		if err := f.repo.Add(name); err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
	}
	c, err := f.repo.Commit(message)
	if err != nil {
		t.Fatalf("Failed to commit %q: %v", message, err)
	}
	return c
}

func (f *fixture) checkout(t *testing.T, branch string) {
	t.Helper()
	if err := f.repo.CheckoutBranch(branch); err != nil {
		t.Fatalf("Failed to checkout %s: %v", branch, err)
	}
}

func (f *fixture) tip(t *testing.T, branch string) objects.Digest {
	t.Helper()
	id, err := f.refs.Branch(branch)
	if err != nil {
		t.Fatalf("Failed to read branch %s: %v", branch, err)
	}
	return id
}

func TestInit(t *testing.T) {
	f := newFixture(t)

	branch, err := f.repo.CurrentBranch()
	if err != nil || branch != refs.DefaultBranch {
		t.Errorf("CurrentBranch() = %q, %v; want master", branch, err)
	}

	head, err := f.repo.Head()
	if err != nil {
		t.Fatalf("Failed to load head: %v", err)
	}
	if head.Message != objects.InitialMessage {
		t.Errorf("Message = %q, want %q", head.Message, objects.InitialMessage)
	}
	if head.Timestamp != "Thu Jan 01 00:00:00 1970 +0000" {
		t.Errorf("Timestamp = %q", head.Timestamp)
	}
	if !head.IsRoot() || len(head.Tree) != 0 {
		t.Errorf("Expected an empty root commit, got %+v", head)
	}
	if !f.repo.Index().IsEmpty() {
		t.Error("Expected an empty index after init")
	}

	if err := f.repo.Init(); !errors.Is(err, apperrors.ErrRepositoryExists) {
		t.Errorf("Expected RepositoryExists on second init, got %v", err)
	}
}

func TestNewRequiresStores(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("Expected New to reject missing stores")
	}
}

func TestLookupCommitAbbreviated(t *testing.T) {
	f := newFixture(t)
	c := f.commitFiles(t, "first", map[string]string{"a.txt": "1"})

	got, err := f.repo.LookupCommit(string(c.ID[:6]))
	if err != nil {
		t.Fatalf("Failed to look up commit: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("LookupCommit = %s, want %s", got.ID, c.ID)
	}

	if _, err := f.repo.LookupCommit("zzzz"); !errors.Is(err, apperrors.ErrNoSuchCommit) {
		t.Errorf("Expected NoSuchCommit, got %v", err)
	}
	if _, err := f.repo.LookupCommit(""); !errors.Is(err, apperrors.ErrNoSuchCommit) {
		t.Errorf("Expected NoSuchCommit for an empty id, got %v", err)
	}
}

func TestInitializeAndOpen(t *testing.T) {
	root := t.TempDir()

	repo, err := Initialize(root, nil)
	if err != nil {
		t.Fatalf("Failed to initialize repository: %v", err)
	}
	if repo.Root() != root {
		t.Errorf("Root() = %q, want %q", repo.Root(), root)
	}
	for _, name := range []string{config.FileName, "HEAD", "index", "catalog.db", filepath.Join("refs", "master")} {
		if _, err := os.Stat(filepath.Join(root, MetaDir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	if err := os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hello\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := repo.Add("hello.txt"); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}
	c, err := repo.Commit("add hello")
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	repo.Close()

	if _, err := Initialize(root, nil); !errors.Is(err, apperrors.ErrRepositoryExists) {
		t.Errorf("Expected RepositoryExists, got %v", err)
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	defer reopened.Close()

	history, err := reopened.Log()
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if len(history) != 2 || history[0].ID != c.ID {
		t.Errorf("Expected reopened log to start at %s, got %d entries", c.ID, len(history))
	}

	ids, err := reopened.Find("hello")
	if err != nil || len(ids) != 1 || ids[0] != c.ID {
		t.Errorf("Find(hello) = %v, %v", ids, err)
	}
	if reopened.Config().Repository.ID == "" {
		t.Error("Expected a repository id in the config")
	}
}

func TestOpenOutsideRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); !errors.Is(err, apperrors.ErrNotARepository) {
		t.Errorf("Expected NotARepository, got %v", err)
	}
}

func TestInitializeBoltBackend(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendBolt
	cfg.Catalog.Enabled = false
	cfg.Repository.Hash = objects.BLAKE3.String()

	repo, err := Initialize(root, cfg)
	if err != nil {
		t.Fatalf("Failed to initialize repository: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("bolt"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := repo.Add("a.txt"); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}
	if _, err := repo.Commit("bolt commit"); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	repo.Close()

	if _, err := os.Stat(filepath.Join(root, MetaDir, "objects.db")); err != nil {
		t.Errorf("Expected bbolt file: %v", err)
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	defer reopened.Close()

	head, err := reopened.Head()
	if err != nil {
		t.Fatalf("Failed to load head: %v", err)
	}
	if head.ID != objects.BLAKE3.SumFields(head.IdentityFields()...) {
		t.Errorf("Expected head digest to use blake3")
	}
	if _, err := reopened.Reindex(); !errors.Is(err, ErrCatalogDisabled) {
		t.Errorf("Expected ErrCatalogDisabled, got %v", err)
	}
}

func TestOpenReindexesStaleCatalog(t *testing.T) {
	root := t.TempDir()
	repo, err := Initialize(root, nil)
	if err != nil {
		t.Fatalf("Failed to initialize repository: %v", err)
	}
	repo.Close()

	for _, name := range []string{"catalog.db", "catalog.db-wal", "catalog.db-shm"} {
		if err := os.Remove(filepath.Join(root, MetaDir, name)); err != nil && !os.IsNotExist(err) {
			t.Fatalf("Failed to remove %s: %v", name, err)
		}
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	defer reopened.Close()

	ids, err := reopened.Find(objects.InitialMessage)
	if err != nil || len(ids) != 1 {
		t.Errorf("Expected the rebuilt catalog to find the initial commit, got %v, %v", ids, err)
	}
}
