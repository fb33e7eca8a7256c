package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type cachedTotals struct {
	Chats    int `json:"chats"`
	Messages int `json:"messages"`
}

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "conversations.json")
	if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	return path
}

func TestNewCacheManager(t *testing.T) {
	cacheDir := t.TempDir()
	cm := NewCacheManager(cacheDir)
	if cm == nil {
		t.Fatal("NewCacheManager() returned nil")
	}
	if cm.GetCacheDir() != cacheDir {
		t.Errorf("GetCacheDir() = %q, want %q", cm.GetCacheDir(), cacheDir)
	}
}

func TestCacheManager_EnsureCacheDir(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache")
	cm := NewCacheManager(cacheDir)

	if err := cm.EnsureCacheDir(); err != nil {
		t.Errorf("EnsureCacheDir() error = %v", err)
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("Cache directory was not created")
	}
}

func TestCacheManager_Paths(t *testing.T) {
	cacheDir := t.TempDir()
	cm := NewCacheManager(cacheDir)

	if got, want := cm.GetIndexPath(), filepath.Join(cacheDir, "snapshots.yaml"); got != want {
		t.Errorf("GetIndexPath() = %q, want %q", got, want)
	}
	if got, want := cm.GetSnapshotPath("dashboard"), filepath.Join(cacheDir, "snapshot_dashboard.json"); got != want {
		t.Errorf("GetSnapshotPath() = %q, want %q", got, want)
	}
}

func TestCacheManager_SaveAndLoadSnapshot(t *testing.T) {
	cm := NewCacheManager(filepath.Join(t.TempDir(), "cache"))
	source := writeSource(t, t.TempDir())

	want := cachedTotals{Chats: 3, Messages: 42}
	if err := cm.SaveSnapshot("dashboard", source, want); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	var got cachedTotals
	if err := cm.LoadSnapshot("dashboard", &got); err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if got != want {
		t.Errorf("LoadSnapshot() = %+v, want %+v", got, want)
	}

	index, err := cm.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if len(index.Snapshots) != 1 || index.Snapshots[0].Key != "dashboard" {
		t.Fatalf("unexpected index: %+v", index)
	}
	if index.Snapshots[0].Metadata.SourcePath != source {
		t.Errorf("SourcePath = %q, want %q", index.Snapshots[0].Metadata.SourcePath, source)
	}
}

func TestCacheManager_SaveSnapshot_KeepsCreatedAt(t *testing.T) {
	cm := NewCacheManager(t.TempDir())
	source := writeSource(t, t.TempDir())

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cm.now = func() time.Time { return first }
	if err := cm.SaveSnapshot("dashboard", source, cachedTotals{Chats: 1}); err != nil {
		t.Fatal(err)
	}
	cm.now = func() time.Time { return first.Add(time.Hour) }
	if err := cm.SaveSnapshot("dashboard", source, cachedTotals{Chats: 2}); err != nil {
		t.Fatal(err)
	}

	index, err := cm.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if len(index.Snapshots) != 1 {
		t.Fatalf("expected one entry, got %d", len(index.Snapshots))
	}
	meta := index.Snapshots[0].Metadata
	if !meta.CreatedAt.Equal(first) {
		t.Errorf("CreatedAt = %v, want %v", meta.CreatedAt, first)
	}
	if !meta.UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v, want %v", meta.UpdatedAt, first.Add(time.Hour))
	}
}

func TestCacheManager_IsCacheValid(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		setup  func(t *testing.T, cm *CacheManager, source string) string
		maxAge time.Duration
		want   bool
	}{
		{
			name: "cache does not exist",
			setup: func(t *testing.T, cm *CacheManager, source string) string {
				return source
			},
			want: false,
		},
		{
			name: "fresh snapshot",
			setup: func(t *testing.T, cm *CacheManager, source string) string {
				mustSave(t, cm, source)
				return source
			},
			maxAge: time.Hour,
			want:   true,
		},
		{
			name: "source modified after save",
			setup: func(t *testing.T, cm *CacheManager, source string) string {
				mustSave(t, cm, source)
				later := time.Now().Add(time.Minute)
				if err := os.Chtimes(source, later, later); err != nil {
					t.Fatal(err)
				}
				return source
			},
			want: false,
		},
		{
			name: "different source path",
			setup: func(t *testing.T, cm *CacheManager, source string) string {
				mustSave(t, cm, source)
				return writeSource(t, t.TempDir())
			},
			want: false,
		},
		{
			name: "older than max age",
			setup: func(t *testing.T, cm *CacheManager, source string) string {
				mustSave(t, cm, source)
				cm.now = func() time.Time { return base.Add(2 * time.Hour) }
				return source
			},
			maxAge: time.Hour,
			want:   false,
		},
		{
			name: "zero max age never expires",
			setup: func(t *testing.T, cm *CacheManager, source string) string {
				mustSave(t, cm, source)
				cm.now = func() time.Time { return base.Add(24 * 365 * time.Hour) }
				return source
			},
			want: true,
		},
		{
			name: "snapshot file removed",
			setup: func(t *testing.T, cm *CacheManager, source string) string {
				mustSave(t, cm, source)
				if err := os.Remove(cm.GetSnapshotPath("dashboard")); err != nil {
					t.Fatal(err)
				}
				return source
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NewCacheManager(t.TempDir())
			cm.now = func() time.Time { return base }
			source := tt.setup(t, cm, writeSource(t, t.TempDir()))

			got, err := cm.IsCacheValid("dashboard", source, tt.maxAge)
			if err != nil {
				t.Fatalf("IsCacheValid() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsCacheValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheManager_ClearCache(t *testing.T) {
	cm := NewCacheManager(t.TempDir())
	source := writeSource(t, t.TempDir())
	mustSave(t, cm, source)

	if err := cm.ClearCache(); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}
	if _, err := os.Stat(cm.GetIndexPath()); !os.IsNotExist(err) {
		t.Error("index still exists after ClearCache()")
	}
	if _, err := os.Stat(cm.GetSnapshotPath("dashboard")); !os.IsNotExist(err) {
		t.Error("snapshot still exists after ClearCache()")
	}

	// clearing an empty cache is not an error
	if err := cm.ClearCache(); err != nil {
		t.Errorf("second ClearCache() error = %v", err)
	}
}

func mustSave(t *testing.T, cm *CacheManager, source string) {
	t.Helper()
	if err := cm.SaveSnapshot("dashboard", source, cachedTotals{Chats: 1, Messages: 2}); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
}
