package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// NextSeqPath returns the next free sequentially numbered path in dir, e.g.
// prefix-1.csv, prefix-2.csv. The directory is created if missing.
func NextSeqPath(dir, prefix, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan output dir %s: %w", dir, err)
	}

	pat := regexp.MustCompile(regexp.QuoteMeta(prefix) + `-(\d+)` + regexp.QuoteMeta(ext) + `$`)
	next := 1
	for _, e := range entries {
		m := pat.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n >= next {
			next = n + 1
		}
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%d%s", prefix, next, ext)), nil
}
