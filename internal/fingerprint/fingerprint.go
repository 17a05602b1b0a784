// Package fingerprint computes fast content hashes used only to tell whether
// two files hold the same bytes.
package fingerprint

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/pargo/cargo-pargo/internal/errs"
)

// Fingerprint is the 64-bit xxHash of a byte sequence
type Fingerprint uint64

// Bytes fingerprints b
func Bytes(b []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(b))
}

// File fingerprints the contents of the file at path
func File(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errs.IO("open", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, errs.IO("read", path, err)
	}

	return Fingerprint(h.Sum64()), nil
}
