package forge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitlet/core/apperrors"
	"gitlet/core/config"
	"gitlet/core/logging"
	"gitlet/core/objects"
	"gitlet/core/refs"
	"gitlet/core/stage"
	"gitlet/pkg/storage/objectstore"
	"gitlet/pkg/storage/worktree"
	"gitlet/storage/boltdb"
	"gitlet/storage/index"
	"gitlet/storage/local"
)

// MetaDir is the directory holding repository state inside the working tree.
const MetaDir = ".gitlet"

// Catalog is a derived lookup table of commits. The object store stays
// the source of truth; the catalog is rebuilt from it when out of step.
type Catalog interface {
	Record(c *objects.Commit) error
	Containing(substr string) ([]objects.Digest, error)
	Matching(fragment string) ([]objects.Digest, error)
	ReferencesBlob(id objects.Digest) (bool, error)
	Count() (int, error)
	Reset() error
	Close() error
}

// Options wires a Repository to its stores. Catalog and Journal are optional.
type Options struct {
	Objects  objectstore.Backend
	Hash     objects.HashAlgorithm
	Refs     refs.Store
	Stage    stage.Store
	Worktree worktree.Worktree
	Ignore   *worktree.Ignore
	Catalog  Catalog
	Journal  worktree.Journal
	Clock    func() time.Time
	Logger   *logging.Logger
}

// Repository is the handle every operation runs against.
type Repository struct {
	root    string
	config  *config.Config
	objects *objectstore.ObjectStore
	refs    refs.Store
	stage   stage.Store
	index   *stage.Index
	work    worktree.Worktree
	ignore  *worktree.Ignore
	catalog Catalog
	journal worktree.Journal
	clock   func() time.Time
	log     *logging.Logger
}

// New builds a Repository over the given stores and loads the staging index.
func New(opts Options) (*Repository, error) {
	if opts.Objects == nil || opts.Refs == nil || opts.Stage == nil || opts.Worktree == nil {
		return nil, errors.New("forge: objects, refs, stage and worktree are required")
	}

	ix, err := opts.Stage.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	repo := &Repository{
		objects: objectstore.New(opts.Objects, opts.Hash),
		refs:    opts.Refs,
		stage:   opts.Stage,
		index:   ix,
		work:    opts.Worktree,
		ignore:  opts.Ignore,
		catalog: opts.Catalog,
		journal: opts.Journal,
		clock:   opts.Clock,
		log:     opts.Logger,
	}
	if repo.ignore == nil {
		repo.ignore = worktree.NewIgnore()
	}
	if repo.clock == nil {
		repo.clock = time.Now
	}
	if repo.log == nil {
		repo.log = logging.Discard()
	}
	return repo, nil
}

// Initialize creates a repository in root and makes its initial commit.
// A nil cfg uses config.Default.
func Initialize(root string, cfg *config.Config) (*Repository, error) {
	metaDir := filepath.Join(root, MetaDir)
	if _, err := os.Stat(metaDir); err == nil {
		return nil, apperrors.New(apperrors.KindRepositoryExists, root)
	}

	if cfg == nil {
		cfg = config.Default()
	}
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return nil, err
	}
	if err := config.NewConfigManager(metaDir).Save(cfg); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}

	repo, err := openWith(root, cfg)
	if err != nil {
		return nil, err
	}
	if err := repo.Init(); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// Open loads the repository in root, finishes any interrupted working
// tree replacement and brings the catalog up to date.
func Open(root string) (*Repository, error) {
	metaDir := filepath.Join(root, MetaDir)
	if info, err := os.Stat(metaDir); err != nil || !info.IsDir() {
		return nil, apperrors.New(apperrors.KindNotARepository, root)
	}

	cfg, err := config.NewConfigManager(metaDir).Load()
	if err != nil {
		return nil, err
	}

	repo, err := openWith(root, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := repo.Recover(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to recover interrupted checkout: %w", err)
	}
	if err := repo.syncCatalog(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to sync catalog: %w", err)
	}
	return repo, nil
}

func openWith(root string, cfg *config.Config) (*Repository, error) {
	metaDir := filepath.Join(root, MetaDir)

	alg, err := cfg.HashAlgorithm()
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	logging.SetDefaultLevel(level)
	logger := logging.Default().WithPrefix("gitlet")

	var backend objectstore.Backend
	switch cfg.Storage.Backend {
	case config.BackendBolt:
		backend, err = boltdb.Open(filepath.Join(metaDir, "objects.db"))
	default:
		backend, err = local.NewStore(filepath.Join(metaDir, "objects"), cfg.Storage.CompressionThreshold)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}

	refStore, err := local.NewRefStore(filepath.Join(metaDir, "refs"), filepath.Join(metaDir, "HEAD"))
	if err != nil {
		backend.Close()
		return nil, err
	}

	var catalog Catalog
	if cfg.Catalog.Enabled {
		c, err := index.NewSQLiteCatalog(filepath.Join(metaDir, "catalog.db"))
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		catalog = c
	}

	repo, err := New(Options{
		Objects:  backend,
		Hash:     alg,
		Refs:     refStore,
		Stage:    local.NewIndexFile(filepath.Join(metaDir, "index")),
		Worktree: worktree.NewDir(root),
		Ignore:   worktree.NewIgnore(cfg.Ignore.Patterns...),
		Catalog:  catalog,
		Journal:  worktree.NewFileJournal(filepath.Join(metaDir, "journal.json")),
		Logger:   logger,
	})
	if err != nil {
		backend.Close()
		if catalog != nil {
			catalog.Close()
		}
		return nil, err
	}
	repo.root = root
	repo.config = cfg
	return repo, nil
}

// Root returns the working directory, empty for in-memory repositories.
func (r *Repository) Root() string {
	return r.root
}

// Config returns the loaded configuration, nil for in-memory repositories.
func (r *Repository) Config() *config.Config {
	return r.config
}

func (r *Repository) Close() error {
	var firstErr error
	if r.catalog != nil {
		if err := r.catalog.Close(); err != nil {
			firstErr = err
		}
	}
	if err := r.objects.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Init creates the master branch and the initial commit. It fails if the
// stores already hold a repository.
func (r *Repository) Init() error {
	if _, err := r.refs.Head(); err == nil {
		return apperrors.New(apperrors.KindRepositoryExists, r.root)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	root := objects.NewRootCommit()
	id, err := r.writeCommit(root)
	if err != nil {
		return err
	}
	if err := r.refs.SetBranch(refs.DefaultBranch, id); err != nil {
		return err
	}
	if err := r.refs.SetHead(refs.DefaultBranch); err != nil {
		return err
	}
	r.index = stage.New()
	if err := r.saveIndex(); err != nil {
		return err
	}

	r.log.Info("initialized repository", "root", r.root, "commit", id)
	return nil
}

// CurrentBranch returns the name of the active branch.
func (r *Repository) CurrentBranch() (string, error) {
	name, err := r.refs.Head()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.New(apperrors.KindNotARepository, r.root)
		}
		return "", err
	}
	return name, nil
}

// headCommit returns the active branch and the commit it points at.
func (r *Repository) headCommit() (string, *objects.Commit, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return "", nil, err
	}
	id, err := r.refs.Branch(branch)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read branch %s: %w", branch, err)
	}
	c, err := r.objects.GetCommit(id)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load head commit %s: %w", id, err)
	}
	return branch, c, nil
}

// Head returns the commit the active branch points at.
func (r *Repository) Head() (*objects.Commit, error) {
	_, c, err := r.headCommit()
	return c, err
}

func (r *Repository) saveIndex() error {
	if err := r.stage.Save(r.index); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	r.log.Debug("saved index", "added", len(r.index.Addition), "removed", len(r.index.Removal))
	return nil
}

// writeCommit stores c and records it in the catalog.
func (r *Repository) writeCommit(c *objects.Commit) (objects.Digest, error) {
	id, err := r.objects.PutCommit(c)
	if err != nil {
		return "", err
	}
	if r.catalog != nil {
		if err := r.catalog.Record(c); err != nil {
			return "", fmt.Errorf("failed to record commit %s: %w", id, err)
		}
	}
	r.log.Debug("wrote commit", "commit", id, "parents", len(c.Parents), "files", len(c.Tree))
	return id, nil
}

// Index returns a copy of the staging index.
func (r *Repository) Index() *stage.Index {
	return r.index.Clone()
}

// Blob returns stored file content.
func (r *Repository) Blob(id objects.Digest) ([]byte, error) {
	return r.objects.GetBlob(id)
}

// LookupCommit loads a commit by full or abbreviated id.
func (r *Repository) LookupCommit(id string) (*objects.Commit, error) {
	d, err := r.resolveCommit(id)
	if err != nil {
		return nil, err
	}
	return r.objects.GetCommit(d)
}

// BranchTip returns the commit a branch points at.
func (r *Repository) BranchTip(name string) (objects.Digest, error) {
	id, err := r.refs.Branch(name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", apperrors.New(apperrors.KindNoSuchBranch, name)
	}
	return id, err
}
