package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/matzehuels/cladeview/pkg/tree"
)

// fetchPrefix namespaces downloaded inputs apart from layouts and artifacts.
const fetchPrefix = "fetch"

// hashKey builds "prefix:sha256(json(parts))". Option structs encode with a
// fixed field order, so equal options always give equal keys.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TreeHash returns the content hash of a parsed tree. The tree is hashed in
// its re-serialized Newick form, so inputs that differ only in whitespace,
// comments or label quoting share layout entries.
func TreeHash(t *tree.Tree) string {
	return Hash([]byte(t.Newick()))
}

// FetchKey returns the cache key of a downloaded tree or metadata file.
func FetchKey(url string) string {
	return fetchPrefix + ":" + Hash([]byte(strings.TrimSpace(url)))
}
