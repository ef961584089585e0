package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HeaderTimeFormat is the timestamp layout of link list headers.
const HeaderTimeFormat = "2006-01-02 15:04"

// AppendLinks appends a header line for query followed by one watch URL per
// non-empty id to the file at path, creating it if needed. It returns the
// number of links written.
//
//	--- [2024-03-15 10:30] golang generics ---
//	https://www.youtube.com/watch?v=...
func AppendLinks(path, query string, ids []string, now time.Time) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open link list: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "\n--- [%s] %s ---\n", now.Format(HeaderTimeFormat), query)

	count := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		fmt.Fprintln(w, WatchURL(id))
		count++
	}

	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("write link list: %w", err)
	}
	return count, f.Close()
}
