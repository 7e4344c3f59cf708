package objects

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

// Digest is the hex encoded hash that names an object in the store.
type Digest string

func (d Digest) String() string {
	return string(d)
}

// Short returns the first n characters of the digest.
func (d Digest) Short(n int) string {
	if len(d) <= n {
		return string(d)
	}
	return string(d[:n])
}

func (d Digest) IsZero() bool {
	return d == ""
}

// HashAlgorithm selects the hash function used to compute digests.
type HashAlgorithm int

const (
	SHA1 HashAlgorithm = iota
	BLAKE3
)

var algorithmNames = map[HashAlgorithm]string{
	SHA1:   "sha1",
	BLAKE3: "blake3",
}

func (a HashAlgorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseHashAlgorithm maps a config value to an algorithm.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha1":
		return SHA1, nil
	case "blake3":
		return BLAKE3, nil
	}
	return SHA1, fmt.Errorf("unsupported hash algorithm %q", name)
}

// Sum hashes data with the algorithm.
func (a HashAlgorithm) Sum(data []byte) Digest {
	switch a {
	case BLAKE3:
		sum := blake3.Sum256(data)
		return Digest(hex.EncodeToString(sum[:]))
	default:
		sum := sha1.Sum(data)
		return Digest(hex.EncodeToString(sum[:]))
	}
}

// SumFields hashes a list of fields separated by NUL bytes.
func (a HashAlgorithm) SumFields(fields ...string) Digest {
	return a.Sum([]byte(strings.Join(fields, "\x00")))
}

// Kind tags a stored object.
type Kind byte

const (
	KindBlob   Kind = 1
	KindCommit Kind = 2
)

var kindNames = map[Kind]string{
	KindBlob:   "blob",
	KindCommit: "commit",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Info describes a stored object without loading its payload.
type Info struct {
	ID   Digest
	Kind Kind
	Size int64
}

// Blob is the content of one file at one point in time.
type Blob struct {
	ID      Digest
	Content []byte
}

func NewBlob(alg HashAlgorithm, content []byte) *Blob {
	return &Blob{ID: alg.Sum(content), Content: content}
}
