package objects

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"testing"
	"time"
)

func TestBlobIdentityIsContentHash(t *testing.T) {
	a := NewBlob(SHA1, []byte("hello\n"))
	b := NewBlob(SHA1, []byte("hello\n"))
	c := NewBlob(SHA1, []byte("hello!\n"))

	if a.ID != b.ID {
		t.Errorf("Expected identical content to share a digest, got %s and %s", a.ID, b.ID)
	}
	if a.ID == c.ID {
		t.Errorf("Expected different content to have different digests")
	}

	sum := sha1.Sum([]byte("hello\n"))
	if want := Digest(hex.EncodeToString(sum[:])); a.ID != want {
		t.Errorf("blob digest = %s, want %s", a.ID, want)
	}
}

func TestHashAlgorithms(t *testing.T) {
	tests := []struct {
		name   string
		alg    HashAlgorithm
		length int
	}{
		{"sha1", SHA1, 40},
		{"blake3", BLAKE3, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.alg.Sum([]byte("data"))
			if len(d) != tt.length {
				t.Errorf("len(%s digest) = %d, want %d", tt.name, len(d), tt.length)
			}
			parsed, err := ParseHashAlgorithm(tt.name)
			if err != nil {
				t.Fatalf("Failed to parse %q: %v", tt.name, err)
			}
			if parsed != tt.alg {
				t.Errorf("ParseHashAlgorithm(%q) = %v, want %v", tt.name, parsed, tt.alg)
			}
		})
	}

	if _, err := ParseHashAlgorithm("md5"); err == nil {
		t.Error("Expected md5 to be rejected")
	}
}

func TestCommitIdentity(t *testing.T) {
	c := &Commit{
		Message:   "c2",
		Timestamp: "Thu Jan 01 00:00:00 1970 +0000",
		Parents:   []Digest{"aaaa"},
		Tree:      Tree{"b.txt": "22", "a.txt": "11"},
	}
	id := c.ComputeID(SHA1)

	joined := strings.Join([]string{"c2", "Thu Jan 01 00:00:00 1970 +0000", "1", "aaaa", "a.txt", "11", "b.txt", "22"}, "\x00")
	sum := sha1.Sum([]byte(joined))
	if want := Digest(hex.EncodeToString(sum[:])); id != want {
		t.Errorf("commit digest = %s, want %s", id, want)
	}

	other := &Commit{Message: "c2", Timestamp: c.Timestamp, Parents: []Digest{"aaaa"}, Tree: Tree{"a.txt": "11", "b.txt": "23"}}
	if other.ComputeID(SHA1) == id {
		t.Error("Expected a different tree to change the digest")
	}

	withParents := &Commit{Message: "m", Timestamp: c.Timestamp, Parents: []Digest{"p1", "p2"}, Tree: Tree{}}
	withFile := &Commit{Message: "m", Timestamp: c.Timestamp, Tree: Tree{"p1": "p2"}}
	if withParents.ComputeID(SHA1) == withFile.ComputeID(SHA1) {
		t.Error("Expected parents and tree entries with the same text to hash differently")
	}
}

func TestCommitSerializeRoundTrip(t *testing.T) {
	c := &Commit{
		Message:   "Merged feature into master.",
		Timestamp: FormatTimestamp(time.Date(2024, 3, 5, 9, 4, 5, 0, time.UTC)),
		Parents:   []Digest{"p1", "p2"},
		Tree:      Tree{"f": "x"},
	}
	id := c.ComputeID(SHA1)

	data, err := c.Serialize()
	if err != nil {
		t.Fatalf("Failed to serialize commit: %v", err)
	}
	decoded, err := DeserializeCommit(id, data)
	if err != nil {
		t.Fatalf("Failed to deserialize commit: %v", err)
	}

	if decoded.ID != id {
		t.Errorf("decoded ID = %s, want %s", decoded.ID, id)
	}
	if !decoded.IsMerge() {
		t.Error("Expected decoded commit to be a merge")
	}
	if decoded.ComputeID(SHA1) != id {
		t.Error("Expected decoded commit to hash to the same digest")
	}
	if decoded.Timestamp != "Tue Mar 05 09:04:05 2024 +0000" {
		t.Errorf("timestamp = %q", decoded.Timestamp)
	}
}

func TestRootCommit(t *testing.T) {
	root := NewRootCommit()
	if !root.IsRoot() || len(root.Tree) != 0 {
		t.Fatalf("Expected an empty parentless root, got %+v", root)
	}
	if root.Timestamp != "Thu Jan 01 00:00:00 1970 +0000" {
		t.Errorf("root timestamp = %q", root.Timestamp)
	}
	if root.FirstParent() != "" {
		t.Errorf("root first parent = %q, want empty", root.FirstParent())
	}
}

func TestTreeHelpers(t *testing.T) {
	tree := Tree{"z": "1", "a": "2", "m": "3"}
	names := tree.Names()
	if strings.Join(names, ",") != "a,m,z" {
		t.Errorf("Names() = %v", names)
	}

	clone := tree.Clone()
	clone["a"] = "9"
	if tree["a"] != "2" {
		t.Error("Expected Clone to copy the map")
	}
	if tree.Equal(clone) {
		t.Error("Expected modified clone to differ")
	}
	delete(clone, "a")
	clone["a"] = "2"
	if !tree.Equal(clone) {
		t.Error("Expected restored clone to be equal")
	}
}

func TestDigestShort(t *testing.T) {
	d := Digest("0123456789abcdef")
	if d.Short(7) != "0123456" {
		t.Errorf("Short(7) = %q", d.Short(7))
	}
	if Digest("abc").Short(7) != "abc" {
		t.Error("Expected short digests to be returned whole")
	}
}
