package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// packExtensions lists the recognised pack file extensions in lookup order.
var packExtensions = []string{".yaml", ".yml", ".json"}

// Manager handles level pack loading and caching
type Manager struct {
	dir       string
	defaultID string
	packs     map[string]*Pack
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewManager creates a pack manager over dir. An empty dir serves only the
// built-in pack.
func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("levels directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("levels directory %s is not a directory", dir)
		}
	}

	return &Manager{
		dir:       dir,
		defaultID: BuiltinPackID,
		packs:     map[string]*Pack{BuiltinPackID: BuiltinPack()},
		logger:    logger,
	}, nil
}

// LoadPack loads a pack by id
func (m *Manager) LoadPack(id string) (*Pack, error) {
	id = strings.TrimSpace(id)
	for _, ext := range packExtensions {
		id = strings.TrimSuffix(id, ext)
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %q", ErrPackNotFound, id)
	}

	m.mu.RLock()
	if pack, ok := m.packs[id]; ok {
		m.mu.RUnlock()
		return pack, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if pack, ok := m.packs[id]; ok {
		return pack, nil
	}

	path, ok := m.findPackFile(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPackNotFound, id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level pack: %w", err)
	}

	pack, err := DecodePack(id, filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	m.packs[id] = pack
	m.logger.Debug("level pack loaded", "pack", id, "levels", pack.Levels.Count())
	return pack, nil
}

// ListPacks returns information about every loadable pack, built-in first.
// Files that fail validation are skipped and logged.
func (m *Manager) ListPacks() ([]*PackInfo, error) {
	infos := []*PackInfo{BuiltinPack().Info()}
	if m.dir == "" {
		return infos, nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	seen := map[string]bool{BuiltinPackID: true}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := packIDFromFilename(entry.Name())
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		pack, err := m.LoadPack(id)
		if err != nil {
			m.logger.Warn("skipping invalid level pack", "pack", id, "error", err)
			continue
		}
		infos = append(infos, pack.Info())
	}

	return infos, nil
}

// Check decodes every pack file in the directory, bypassing the cache, and
// returns the failures keyed by file name.
func (m *Manager) Check() (map[string]error, error) {
	failures := map[string]error{}
	if m.dir == "" {
		return failures, nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := packIDFromFilename(entry.Name())
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.dir, entry.Name()))
		if err == nil {
			_, err = DecodePack(id, entry.Name(), data)
		}
		if err != nil {
			failures[entry.Name()] = err
		}
	}
	return failures, nil
}

// Default returns the default pack, falling back to the built-in levels when
// the configured default can not be loaded.
func (m *Manager) Default() *Pack {
	m.mu.RLock()
	id := m.defaultID
	m.mu.RUnlock()

	pack, err := m.LoadPack(id)
	if err != nil {
		m.logger.Warn("default level pack unavailable, using built-in levels", "pack", id, "error", err)
		return BuiltinPack()
	}
	return pack
}

// SetDefault sets the default pack by id
func (m *Manager) SetDefault(id string) error {
	pack, err := m.LoadPack(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = pack.ID
	return nil
}

// Invalidate drops a cached pack so the next LoadPack re-reads its file.
func (m *Manager) Invalidate(id string) {
	if id == BuiltinPackID {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.packs, id)
}

// RefreshCache drops every cached pack except the built-in one.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packs = map[string]*Pack{BuiltinPackID: BuiltinPack()}
}

// Dir returns the directory the manager reads from.
func (m *Manager) Dir() string {
	return m.dir
}

// findPackFile locates the file backing id. Caller holds m.mu.
func (m *Manager) findPackFile(id string) (string, bool) {
	if m.dir == "" {
		return "", false
	}
	for _, ext := range packExtensions {
		path := filepath.Join(m.dir, id+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// packIDFromFilename strips a recognised extension from name.
func packIDFromFilename(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range packExtensions {
		if ext == known {
			id := strings.TrimSuffix(name, filepath.Ext(name))
			return id, id != "" && id != BuiltinPackID
		}
	}
	return "", false
}
