// Package identity derives stable numeric point IDs for document chunks.
// The same (source_id, offset) pair always maps to the same ID, which makes
// re-ingestion idempotent at the point level: re-embedding an unchanged
// chunk overwrites its existing point instead of duplicating it.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// IDRange bounds the numeric ID space. Hashes are reduced modulo this value,
// matching the ID scheme of previously indexed collections. Collisions
// between distinct chunk keys are possible but vanishingly rare at news
// corpus scale; the overwrite semantics of upsert make last-write-wins the
// accepted outcome.
const IDRange = 1_000_000_000_000 // 10^12

// ChunkKey returns the logical key for a chunk: "{source_id}_{offset}".
func ChunkKey(sourceID string, offset int) string {
	return fmt.Sprintf("%s_%d", sourceID, offset)
}

// PointID maps a chunk key to a numeric ID in [0, IDRange) via a SHA-256
// hash. Purely a function of the key, no hidden state, stable across runs
// and processes.
func PointID(key string) uint64 {
	h := sha256.Sum256([]byte(key))
	return binary.BigEndian.Uint64(h[:8]) % IDRange
}
