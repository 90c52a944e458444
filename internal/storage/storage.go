package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shoplist/internal/database"
	"shoplist/internal/shopping"
)

// Snapshot is a shopping list as it reads once reconciled against the
// category catalog: grouped by category with per-group and grand totals.
type Snapshot struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UpdatedAt string          `json:"updatedAt"`
	Groups    []SnapshotGroup `json:"groups"`
	Total     int             `json:"total"`
}

// SnapshotGroup is one category section of a Snapshot.
type SnapshotGroup struct {
	CategoryID string              `json:"categoryId"`
	Category   string              `json:"category"`
	Orphan     bool                `json:"orphan,omitempty"`
	Items      []shopping.LineItem `json:"items"`
	Subtotal   int                 `json:"subtotal"`
}

// NewSnapshot reconciles list against catalog and aggregates the result.
func NewSnapshot(list *shopping.ShoppingList, catalog []shopping.Category) Snapshot {
	rec := shopping.Reconcile(list.Items, catalog)
	ledger := shopping.Hydrate(rec.Items)
	groups := shopping.Aggregate(ledger.Items(), shopping.View(catalog, rec.Extra))

	snap := Snapshot{
		ID:     list.ID,
		Name:   list.Name,
		Groups: make([]SnapshotGroup, 0, len(groups)),
		Total:  shopping.GrandTotal(groups),
	}
	if list.UpdatedAt != nil {
		snap.UpdatedAt = database.FormatTime(*list.UpdatedAt)
	}
	for _, g := range groups {
		snap.Groups = append(snap.Groups, SnapshotGroup{
			CategoryID: g.Category.ID,
			Category:   g.Category.Name,
			Orphan:     g.Category.IsOrphan(),
			Items:      g.Items,
			Subtotal:   g.Subtotal,
		})
	}
	return snap
}

// ExportStore keeps the latest exported snapshot of each list on disk.
type ExportStore struct {
	basePath string
}

// NewExportStore creates a new ExportStore and ensures the base directory exists.
func NewExportStore(basePath string) (*ExportStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ExportStore{basePath: basePath}, nil
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	if ts == "" {
		return "unversioned"
	}
	return strings.ReplaceAll(ts, ":", "-")
}

// Path returns the file a given list version is exported to.
func (s *ExportStore) Path(listID, updatedAt string) string {
	filename := fmt.Sprintf("%s_%s.json", listID, sanitizeTimestamp(updatedAt))
	return filepath.Join(s.basePath, filename)
}

// Save replaces any earlier export of the snapshot's list with this version.
func (s *ExportStore) Save(snap Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.RemoveStaleVersions(snap.ID); err != nil {
		return "", err
	}

	filePath := s.Path(snap.ID, snap.UpdatedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return filePath, nil
}

// Load retrieves a snapshot from a specific version file.
func (s *ExportStore) Load(listID, updatedAt string) (*Snapshot, error) {
	data, err := os.ReadFile(s.Path(listID, updatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Exists checks if a specific version of a list has been exported.
func (s *ExportStore) Exists(listID, updatedAt string) bool {
	_, err := os.Stat(s.Path(listID, updatedAt))
	return !os.IsNotExist(err)
}

// RemoveStaleVersions removes every exported version of a list.
func (s *ExportStore) RemoveStaleVersions(listID string) error {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", listID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}
