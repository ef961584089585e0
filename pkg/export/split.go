package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sternrassler/yt-finder/pkg/duration"
)

// SplitPaths are the files written by WriteSplit.
type SplitPaths struct {
	Long  string
	Short string
}

// WriteSplit writes the watch URLs of long and short entries to
// <dir>/<name>_long.txt and <dir>/<name>_shorts.txt, name passed through
// SafeFilename. Existing files are replaced.
func WriteSplit(dir, name string, long, short []duration.Entry) (SplitPaths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SplitPaths{}, fmt.Errorf("create output directory: %w", err)
	}

	safe := SafeFilename(name)
	paths := SplitPaths{
		Long:  filepath.Join(dir, safe+"_long.txt"),
		Short: filepath.Join(dir, safe+"_shorts.txt"),
	}

	if err := writeURLs(paths.Long, long); err != nil {
		return SplitPaths{}, err
	}
	if err := writeURLs(paths.Short, short); err != nil {
		return SplitPaths{}, err
	}
	return paths, nil
}

func writeURLs(path string, entries []duration.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		fmt.Fprintln(w, WatchURL(e.VideoID))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
