// Package digest provides a pluggable content-digest interface, defaulting
// to SHA-256, shared by the work fingerprint cache (C7) and anything else
// that needs a stable byte digest of a file or a serializable value.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/spf13/afero"

	"github.com/assemble-build/assemble/engine/core"
)

// Digester produces a hex-encoded digest of arbitrary bytes. The zero value
// of Default is ready to use; callers needing a different algorithm can
// supply their own Digester (e.g. to migrate a fingerprint cache to a
// stronger hash without touching call sites).
type Digester interface {
	// Sum returns the hex digest of b.
	Sum(b []byte) string
	// SumReader returns the hex digest of r's contents, without buffering
	// the whole stream in memory.
	SumReader(r io.Reader) (string, error)
}

// Default is the SHA-256 Digester used unless a component is configured
// with an explicit override.
var Default Digester = sha256Digester{}

type sha256Digester struct{}

func (sha256Digester) Sum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (sha256Digester) SumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the digest of the file at path read through fs, using d (or
// Default if d is nil).
func File(fs afero.Fs, path string, d Digester) (string, error) {
	if d == nil {
		d = Default
	}
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return d.SumReader(f)
}

// Value returns the digest of v's canonical serialized form (sorted-key
// JSON), using d (or Default if d is nil). This is the digest recipe for
// non-file task inputs/outputs.
func Value(v any, d Digester) string {
	if d == nil {
		d = Default
	}
	return d.Sum(core.StableJSONBytes(v))
}
