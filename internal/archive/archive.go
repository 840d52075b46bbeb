// Package archive bundles cleaned documents for grouped download.
package archive

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/younessemlali/gerflor-xml-cleaner/internal/batch"
)

// DefaultSuffix is appended to a filename to derive its cleaned name.
const DefaultSuffix = "_cleaned"

// CleanedName derives the output filename for an input: "foo.xml" becomes
// "foo_cleaned.xml". Names without a .xml extension get the suffix appended.
// Any directory part is dropped.
func CleanedName(name, suffix string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if strings.EqualFold(ext, ".xml") {
		return strings.TrimSuffix(base, ext) + suffix + ext
	}
	return base + suffix
}

// BundleName returns a timestamped archive filename, e.g.
// "gerflor_cleaned_20240131_154210.zip".
func BundleName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.zip", prefix, t.Format("20060102_150405"))
}

// WriteZip writes the cleaned results to w as a ZIP archive. Failed results
// are skipped. Entry names are derived with CleanedName; collisions get a
// numeric suffix so no document is silently dropped.
func WriteZip(w io.Writer, results []batch.Result, suffix string) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int)

	for _, res := range results {
		if !res.Cleaned() {
			continue
		}

		name := CleanedName(res.Name, suffix)
		n := used[name]
		used[name] = n + 1
		if n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
		}

		f, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := f.Write(res.Data); err != nil {
			zw.Close()
			return fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}
