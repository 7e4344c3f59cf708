package forge

import (
	"errors"
	"fmt"

	"gitlet/pkg/storage/objectstore"
)

// ErrCatalogDisabled is returned by Reindex when the repository has no catalog.
var ErrCatalogDisabled = errors.New("commit catalog is disabled")

// Stats counts the objects in the store.
func (r *Repository) Stats() (objectstore.Stats, error) {
	return r.objects.Stats()
}

// Reindex rebuilds the commit catalog from the object store and returns
// the number of commits recorded.
func (r *Repository) Reindex() (int, error) {
	if r.catalog == nil {
		return 0, ErrCatalogDisabled
	}
	if err := r.catalog.Reset(); err != nil {
		return 0, fmt.Errorf("failed to reset catalog: %w", err)
	}

	commits, err := r.objects.Commits()
	if err != nil {
		return 0, err
	}
	for _, c := range commits {
		if err := r.catalog.Record(c); err != nil {
			return 0, fmt.Errorf("failed to record commit %s: %w", c.ID, err)
		}
	}
	r.log.Info("rebuilt catalog", "commits", len(commits))
	return len(commits), nil
}

// syncCatalog reindexes when the catalog and the store disagree on the
// number of commits.
func (r *Repository) syncCatalog() error {
	if r.catalog == nil {
		return nil
	}
	recorded, err := r.catalog.Count()
	if err != nil {
		return err
	}
	ids, err := r.objects.CommitIDs()
	if err != nil {
		return err
	}
	if recorded == len(ids) {
		return nil
	}

	r.log.Warn("catalog out of date", "recorded", recorded, "stored", len(ids))
	_, err = r.Reindex()
	return err
}
