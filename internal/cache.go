package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1.0"

// CacheManager stores computed snapshots on disk, keyed by the export file
// they were built from
type CacheManager struct {
	cacheDir string
	now      func() time.Time
}

// CacheMetadata stores metadata about a cached snapshot
type CacheMetadata struct {
	SourcePath    string    `json:"source_path" yaml:"source_path"`
	SourceModTime time.Time `json:"source_mod_time" yaml:"source_mod_time"`
	SourceSize    int64     `json:"source_size" yaml:"source_size"`
	CacheVersion  string    `json:"cache_version" yaml:"cache_version"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// SnapshotIndexEntry describes one cached snapshot
type SnapshotIndexEntry struct {
	Key      string        `yaml:"key"`
	File     string        `yaml:"file"`
	Metadata CacheMetadata `yaml:"metadata"`
}

// SnapshotIndex is the YAML index of all cached snapshots
type SnapshotIndex struct {
	Snapshots []SnapshotIndexEntry `yaml:"snapshots"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
		now:      time.Now,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the snapshot index YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "snapshots.yaml")
}

// GetSnapshotPath returns the path to a snapshot's cache file
func (cm *CacheManager) GetSnapshotPath(key string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("snapshot_%s.json", key))
}

// LoadIndex loads the snapshot index
func (cm *CacheManager) LoadIndex() (*SnapshotIndex, error) {
	data, err := os.ReadFile(cm.GetIndexPath())
	if err != nil {
		return nil, err
	}

	var index SnapshotIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	return &index, nil
}

// SaveIndex saves the snapshot index
func (cm *CacheManager) SaveIndex(index *SnapshotIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return os.WriteFile(cm.GetIndexPath(), data, 0644)
}

func (cm *CacheManager) findEntry(index *SnapshotIndex, key string) (int, bool) {
	for i, entry := range index.Snapshots {
		if entry.Key == key {
			return i, true
		}
	}
	return -1, false
}

// IsCacheValid reports whether the snapshot stored under key was built from
// sourcePath as it is on disk now and is younger than maxAge. A zero maxAge
// disables the age check.
func (cm *CacheManager) IsCacheValid(key, sourcePath string, maxAge time.Duration) (bool, error) {
	index, err := cm.LoadIndex()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	i, ok := cm.findEntry(index, key)
	if !ok {
		return false, nil
	}
	meta := index.Snapshots[i].Metadata

	if meta.SourcePath != sourcePath || meta.CacheVersion != cacheVersion {
		return false, nil
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return false, nil
	}
	if !meta.SourceModTime.Equal(info.ModTime()) || meta.SourceSize != info.Size() {
		return false, nil
	}
	if maxAge > 0 && cm.now().Sub(meta.UpdatedAt) > maxAge {
		return false, nil
	}
	if _, err := os.Stat(cm.GetSnapshotPath(key)); err != nil {
		return false, nil
	}
	return true, nil
}

// SaveSnapshot writes v as JSON under key and records the source state in
// the index
func (cm *CacheManager) SaveSnapshot(key, sourcePath string, v interface{}) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(cm.GetSnapshotPath(key), data, 0644); err != nil {
		return err
	}

	index, err := cm.LoadIndex()
	if err != nil {
		index = &SnapshotIndex{}
	}
	now := cm.now()
	entry := SnapshotIndexEntry{
		Key:  key,
		File: filepath.Base(cm.GetSnapshotPath(key)),
		Metadata: CacheMetadata{
			SourcePath:    sourcePath,
			SourceModTime: info.ModTime(),
			SourceSize:    info.Size(),
			CacheVersion:  cacheVersion,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
	if i, ok := cm.findEntry(index, key); ok {
		entry.Metadata.CreatedAt = index.Snapshots[i].Metadata.CreatedAt
		index.Snapshots[i] = entry
	} else {
		index.Snapshots = append(index.Snapshots, entry)
	}
	return cm.SaveIndex(index)
}

// LoadSnapshot decodes the snapshot stored under key into v
func (cm *CacheManager) LoadSnapshot(key string, v interface{}) error {
	data, err := os.ReadFile(cm.GetSnapshotPath(key))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return nil
}

// ClearCache removes every snapshot and the index
func (cm *CacheManager) ClearCache() error {
	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Snapshots {
			_ = os.Remove(cm.GetSnapshotPath(entry.Key))
		}
	}
	if err := os.Remove(cm.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
