package dedup

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// chunkSize is the read buffer used when streaming file contents into the hash.
const chunkSize = 128 * 1024

// canonicalExt is appended to the content hash to form a file's final name.
const canonicalExt = ".txt"

// HashFile returns the lowercase hex SHA-512 digest of the file at path,
// read in fixed-size chunks so large inputs never sit in memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha512.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CanonicalName is the name a file with the given content hash must carry.
func CanonicalName(hash string) string {
	return hash + canonicalExt
}
