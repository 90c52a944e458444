package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
)

// Health is a point-in-time view of the process and its data directory.
type Health struct {
	AllocMB    uint64
	SysMB      uint64
	NumGC      uint32
	Goroutines int
	DataFiles  int
	DataBytes  int64
}

// ReadHealth collects memory statistics and the size of everything stored
// under dataPath: the database, exported snapshots and the response cache.
func ReadHealth(dataPath string) Health {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := Health{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
	h.DataFiles, h.DataBytes = dirUsage(dataPath)
	return h
}

// DataSize renders DataBytes for people.
func (h Health) DataSize() string {
	return FormatBytes(h.DataBytes)
}

func dirUsage(path string) (files int, size int64) {
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size
}

// FormatBytes renders a byte count with a binary unit, e.g. "1.5 KB".
func FormatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
