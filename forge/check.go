package forge

import (
	"gitlet/core/health"
	"gitlet/core/objects"
)

// Components named in a check report.
const (
	componentObjects = "objects"
	componentRefs    = "refs"
	componentIndex   = "index"
	componentCatalog = "catalog"
	componentJournal = "journal"
)

// Check verifies that every stored object matches its digest, that the
// commit graph is closed and that refs and the index point at stored
// objects. It reads only.
func (r *Repository) Check() (*health.HealthReport, error) {
	hc := health.NewHealthChecker()
	for _, name := range []string{componentObjects, componentRefs, componentIndex} {
		hc.RegisterComponent(name)
	}

	commits, err := r.checkObjects(hc)
	if err != nil {
		return nil, err
	}
	if err := r.checkRefs(hc, commits); err != nil {
		return nil, err
	}

	for _, name := range r.index.AddedNames() {
		id := r.index.Addition[name]
		if ok, err := r.objects.Backend().Has(id); err != nil {
			return nil, err
		} else if !ok {
			hc.Report(componentIndex, health.Unhealthy, "staged %s points at missing blob %s", name, id)
		}
	}

	if r.catalog != nil {
		hc.RegisterComponent(componentCatalog)
		recorded, err := r.catalog.Count()
		if err != nil {
			return nil, err
		}
		if recorded != len(commits) {
			hc.Report(componentCatalog, health.Degraded, "catalog holds %d commits, store holds %d", recorded, len(commits))
		}
	}

	if r.journal != nil {
		hc.RegisterComponent(componentJournal)
		if e, err := r.journal.Pending(); err != nil {
			return nil, err
		} else if e != nil {
			hc.Report(componentJournal, health.Degraded, "unfinished %s to %s", e.Mode, e.To)
		}
	}

	report := hc.GenerateReport()
	r.log.Debug("checked repository", "status", report.OverallStatus)
	return report, nil
}

// checkObjects rehashes every object and returns the commits found.
func (r *Repository) checkObjects(hc *health.HealthChecker) (map[objects.Digest]*objects.Commit, error) {
	backend := r.objects.Backend()
	alg := r.objects.Algorithm()

	infos, err := backend.List()
	if err != nil {
		return nil, err
	}

	blobs := make(map[objects.Digest]bool)
	commits := make(map[objects.Digest]*objects.Commit)
	for _, info := range infos {
		kind, data, err := backend.Get(info.ID)
		if err != nil {
			hc.Report(componentObjects, health.Unhealthy, "cannot read %s: %v", info.ID, err)
			continue
		}
		switch kind {
		case objects.KindBlob:
			blobs[info.ID] = true
			if alg.Sum(data) != info.ID {
				hc.Report(componentObjects, health.Unhealthy, "blob %s does not match its content", info.ID)
			}
		case objects.KindCommit:
			c, err := objects.DeserializeCommit(info.ID, data)
			if err != nil {
				hc.Report(componentObjects, health.Unhealthy, "%v", err)
				continue
			}
			commits[info.ID] = c
			if alg.SumFields(c.IdentityFields()...) != info.ID {
				hc.Report(componentObjects, health.Unhealthy, "commit %s does not match its fields", info.ID)
			}
		}
	}

	for _, c := range commits {
		for _, p := range c.Parents {
			if commits[p] == nil {
				hc.Report(componentObjects, health.Unhealthy, "commit %s has missing parent %s", c.ID, p)
			}
		}
		for _, name := range c.Tree.Names() {
			if !blobs[c.Tree[name]] {
				hc.Report(componentObjects, health.Unhealthy, "commit %s tracks %s with missing blob %s", c.ID, name, c.Tree[name])
			}
		}
	}
	return commits, nil
}

func (r *Repository) checkRefs(hc *health.HealthChecker, commits map[objects.Digest]*objects.Commit) error {
	names, err := r.refs.Branches()
	if err != nil {
		return err
	}
	for _, name := range names {
		id, err := r.refs.Branch(name)
		if err != nil {
			return err
		}
		if commits[id] == nil {
			hc.Report(componentRefs, health.Unhealthy, "branch %s points at missing commit %s", name, id)
		}
	}

	head, err := r.refs.Head()
	if err != nil {
		hc.Report(componentRefs, health.Unhealthy, "HEAD is unreadable: %v", err)
		return nil
	}
	if _, err := r.refs.Branch(head); err != nil {
		hc.Report(componentRefs, health.Unhealthy, "HEAD names missing branch %s", head)
	}
	return nil
}
