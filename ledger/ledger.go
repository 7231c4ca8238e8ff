// Package ledger implements the append-only usage and incident logs.
//
// Each category gets its own file of fixed-format human-readable blocks.
// Entries are never mutated or deleted after append. Callers treat append
// failures as non-fatal.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dawalabs/medglot"
)

// FileLedger appends fixed-format blocks to one file per category under a
// base directory. The file is created on first use.
type FileLedger struct {
	dir string
	mu  sync.Mutex
}

// NewFileLedger creates a ledger rooted at dir.
func NewFileLedger(dir string) *FileLedger {
	return &FileLedger{dir: dir}
}

// Append writes one entry block to the category's file.
func (l *FileLedger) Append(e medglot.LedgerEntry) error {
	if e.Category == "" {
		return fmt.Errorf("ledger entry without category")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	path := filepath.Join(l.dir, e.Category+".txt")
	_, statErr := os.Stat(path)
	exists := statErr == nil

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", e.Category, err)
	}
	defer f.Close()

	block := formatEntry(e)
	if exists {
		block = "\n" + block
	}
	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("appending to ledger %s: %w", e.Category, err)
	}
	return nil
}

// formatEntry renders one fixed-format block.
func formatEntry(e medglot.LedgerEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Route Name     : %s\n", e.RouteKey)
	fmt.Fprintf(&b, "Language       : %s\n", e.Category)
	fmt.Fprintf(&b, "Total Tokens   : %d\n", e.Tokens)
	if e.Note != "" {
		fmt.Fprintf(&b, "Note           : %s\n", e.Note)
	}
	b.WriteString("-------------------------------\n")
	return b.String()
}

var _ medglot.UsageLedger = (*FileLedger)(nil)

// MemoryLedger records entries in memory, for tests.
type MemoryLedger struct {
	mu      sync.Mutex
	Entries []medglot.LedgerEntry
	// Err, when set, is returned by Append to exercise the best-effort
	// contract in callers.
	Err error
}

// Append implements medglot.UsageLedger.
func (l *MemoryLedger) Append(e medglot.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Entries = append(l.Entries, e)
	return nil
}

// ByCategory returns the recorded entries for one category.
func (l *MemoryLedger) ByCategory(category string) []medglot.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []medglot.LedgerEntry
	for _, e := range l.Entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

var _ medglot.UsageLedger = (*MemoryLedger)(nil)
