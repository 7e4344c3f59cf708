package index

import (
	"path/filepath"
	"reflect"
	"testing"

	"gitlet/core/objects"
)

func openTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Failed to open catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func record(t *testing.T, c *SQLiteCatalog, commit *objects.Commit) {
	t.Helper()
	if err := c.Record(commit); err != nil {
		t.Fatalf("Failed to record %s: %v", commit.ID, err)
	}
}

func TestCatalogSearch(t *testing.T) {
	c := openTestCatalog(t)

	record(t, c, &objects.Commit{ID: "aa11", Message: "initial commit", Timestamp: "t0", Tree: objects.Tree{}})
	record(t, c, &objects.Commit{ID: "bb22", Message: "Add README", Timestamp: "t1", Parents: []objects.Digest{"aa11"}, Tree: objects.Tree{"README": "r1"}})
	record(t, c, &objects.Commit{ID: "ab33", Message: "add license", Timestamp: "t2", Parents: []objects.Digest{"bb22"}, Tree: objects.Tree{"README": "r1", "LICENSE": "l1"}})
	record(t, c, &objects.Commit{ID: "bb22", Message: "duplicate ignored", Timestamp: "t9", Tree: objects.Tree{}})

	n, err := c.Count()
	if err != nil || n != 3 {
		t.Errorf("Count() = %d, %v; want 3", n, err)
	}

	tests := []struct {
		name   string
		substr string
		want   []objects.Digest
	}{
		{"case sensitive upper", "Add", []objects.Digest{"bb22"}},
		{"case sensitive lower", "add", []objects.Digest{"ab33"}},
		{"space", " ", []objects.Digest{"aa11", "bb22", "ab33"}},
		{"none", "merge", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Containing(tt.substr)
			if err != nil {
				t.Fatalf("Containing failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Containing(%q) = %v, want %v", tt.substr, got, tt.want)
			}
		})
	}

	got, err := c.Matching("b")
	if err != nil {
		t.Fatalf("Matching failed: %v", err)
	}
	if !reflect.DeepEqual(got, []objects.Digest{"ab33", "bb22"}) {
		t.Errorf("Matching(b) = %v", got)
	}
}

func TestCatalogBlobReferences(t *testing.T) {
	c := openTestCatalog(t)
	record(t, c, &objects.Commit{ID: "c1", Message: "m", Timestamp: "t", Tree: objects.Tree{"a": "blob1"}})

	if ok, err := c.ReferencesBlob("blob1"); err != nil || !ok {
		t.Errorf("ReferencesBlob(blob1) = %v, %v", ok, err)
	}
	if ok, _ := c.ReferencesBlob("blob2"); ok {
		t.Error("Expected blob2 to be unreferenced")
	}

	if err := c.Reset(); err != nil {
		t.Fatalf("Failed to reset catalog: %v", err)
	}
	if n, _ := c.Count(); n != 0 {
		t.Errorf("Count after reset = %d", n)
	}
	if ok, _ := c.ReferencesBlob("blob1"); ok {
		t.Error("Expected reset to drop file references")
	}
}
