package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterByName(t *testing.T) {
	files := Files{
		{Name: "report.pdf"},
		{Name: "invoice.docx"},
		{Name: "Quarterly-REPORT.xlsx"},
		{Name: "rep*.txt"},
		{Name: "annual pdf summary.txt"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive substring", "rep", []string{"report.pdf", "Quarterly-REPORT.xlsx", "rep*.txt"}},
		{"upper case query", "REPORT", []string{"report.pdf", "Quarterly-REPORT.xlsx"}},
		{"no wildcard syntax", "rep*", []string{"rep*.txt"}},
		{"empty query keeps all", "", []string{"report.pdf", "invoice.docx", "Quarterly-REPORT.xlsx", "rep*.txt", "annual pdf summary.txt"}},
		{"whitespace is literal", " pdf", []string{"annual pdf summary.txt"}},
		{"whitespace only query", "  ", []string{}},
		{"no match", "zip", []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByName(files, tt.query)
			names := make([]string, 0, len(got))
			for _, f := range got {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1023 B", FormatSize(1023))
	assert.Equal(t, "2.0 KB", FormatSize(2048))
	assert.Equal(t, "1.5 MB", FormatSize(3<<19))
	assert.Equal(t, "2.0 GB", FormatSize(2<<30))
}

func TestKind(t *testing.T) {
	cases := map[string]string{
		"image/png":                   "image",
		"audio/mpeg":                  "audio",
		"video/mp4":                   "video",
		"application/pdf":             "pdf",
		"application/zip":             "archive",
		"application/x-7z-compressed": "archive",
		"text/plain":                  "document",
		"application/msword-document": "document",
		"application/octet-stream":    "file",
	}
	for mime, want := range cases {
		assert.Equal(t, want, Kind(mime), mime)
	}
}
