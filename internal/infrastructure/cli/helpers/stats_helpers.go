package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// CountStatistic is a label with its occurrence count.
type CountStatistic struct {
	Label string
	Count int
}

// CalculateTopCounts returns the labels ordered by count (descending) then name.
// If limit is 0 or negative, returns all labels.
func CalculateTopCounts(frequency map[string]int, limit int) []CountStatistic {
	stats := make([]CountStatistic, 0, len(frequency))
	for label, count := range frequency {
		stats = append(stats, CountStatistic{Label: label, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Label < stats[j].Label
		}
		return stats[i].Count > stats[j].Count
	})
	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// CalculateSuccessRate calculates the success rate as a percentage
func CalculateSuccessRate(successfulCount int, totalCount int) float64 {
	if totalCount == 0 {
		return 0.0
	}
	return float64(successfulCount) / float64(totalCount) * 100.0
}

// CalculateDirectorySize sums the size of every regular file under dirPath.
// A missing directory has size zero.
func CalculateDirectorySize(dirPath string) (int64, error) {
	var totalSize int64
	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip files that can't be accessed
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		totalSize += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return totalSize, nil
}

// FormatBytes renders a size with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
