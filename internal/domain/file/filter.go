package file

import (
	"fmt"
	"strings"
)

// FilterByName keeps the files whose name contains query, ignoring case.
// The query is matched literally, whitespace included, and the input order is
// preserved. An empty query keeps everything.
func FilterByName(files Files, query string) Files {
	q := strings.ToLower(query)
	if q == "" {
		return files
	}

	out := make(Files, 0, len(files))
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}

// FormatSize renders a byte count as B, KB, MB or GB with one decimal.
func FormatSize(bytes int64) string {
	const unit = 1024
	switch {
	case bytes < unit:
		return fmt.Sprintf("%d B", bytes)
	case bytes < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(bytes)/unit)
	case bytes < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(unit*unit*unit))
	}
}

// Kind groups a MIME type into the coarse categories shown on the share page.
func Kind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case mimeType == "application/pdf":
		return "pdf"
	case strings.Contains(mimeType, "zip"), strings.Contains(mimeType, "archive"), strings.Contains(mimeType, "compressed"):
		return "archive"
	case strings.Contains(mimeType, "text"), strings.Contains(mimeType, "document"):
		return "document"
	}
	return "file"
}
