package changes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

// Cell and row separators. Every cell is preceded by cellSeparator, so a
// row of one empty cell differs from a row of none. The parser strips
// control characters, so neither can occur inside a cell value.
const (
	cellSeparator = "\x1f"
	rowSeparator  = "\x1e"
)

type Decision int

const (
	Changed Decision = iota
	Unchanged
)

func (d Decision) String() string {
	if d == Unchanged {
		return "unchanged"
	}
	return "changed"
}

// ComputeHash digests the record's rows in row-major order. Column names
// and report metadata do not contribute.
func ComputeHash(record domain.ResponseRecord) (domain.ContentHash, error) {
	h := sha256.New()
	for _, row := range record.Rows {
		for _, cell := range row {
			if _, err := io.WriteString(h, cellSeparator); err != nil {
				return "", fmt.Errorf("failed to hash row: %w", err)
			}
			if _, err := io.WriteString(h, cell); err != nil {
				return "", fmt.Errorf("failed to hash row: %w", err)
			}
		}
		if _, err := io.WriteString(h, rowSeparator); err != nil {
			return "", fmt.Errorf("failed to hash row: %w", err)
		}
	}
	return domain.ContentHash(hex.EncodeToString(h.Sum(nil))), nil
}

// Decide compares a new hash against the stored baseline. A missing
// baseline counts as a change.
func Decide(newHash domain.ContentHash, stored *domain.ContentHash) Decision {
	if stored == nil || *stored != newHash {
		return Changed
	}
	return Unchanged
}

// Evaluate hashes record and decides against stored. When hashing fails the
// record is treated as changed and the returned hash is empty.
func Evaluate(record domain.ResponseRecord, stored *domain.ContentHash) (domain.ContentHash, Decision, error) {
	hash, err := ComputeHash(record)
	if err != nil {
		return "", Changed, err
	}
	return hash, Decide(hash, stored), nil
}
