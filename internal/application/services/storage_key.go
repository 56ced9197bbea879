package services

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

const (
	maxBaseNameLen = 100
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLen      = 8
)

var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// genBlobPath: "<owner>/<unix-ms>-<rand>_<safe-name>". The random suffix keeps two
// uploads of the same name in the same millisecond apart.
func genBlobPath(owner user.UUID, name, mimeType string, now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLen)
	if err != nil {
		return "", err
	}

	safe := storageName(name)
	if path.Ext(safe) == "" {
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			safe += exts[0]
		}
	}

	return fmt.Sprintf("%s/%d-%s_%s", owner.String(), now.UnixMilli(), suffix, safe), nil
}

// storageName reduces a client file name to a lower-case ASCII slug that is safe as
// the last segment of an object key. A recognisable extension is kept.
func storageName(original string) string {
	s := strings.ReplaceAll(strings.TrimSpace(original), "\\", "/")
	s = path.Base(s)
	if s == "." || s == ".." || s == "/" || s == "" {
		return "file"
	}
	s = stripMarks(s)

	base, ext := splitExt(s)
	base = slug(base)
	if base == "" {
		base = "file"
	}
	if _, reserved := windowsReserved[base]; reserved {
		base = "_" + base
	}

	// the slug is ASCII, so bytes and runes agree
	if len(base)+len(ext) > maxBaseNameLen {
		base = base[:max(maxBaseNameLen-len(ext), 1)]
	}
	return base + ext
}

// stripMarks folds accented letters onto their base letter: "Résumé" becomes "Resume".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// splitExt returns the lower-cased extension only when it is short and alphanumeric;
// otherwise the whole name is the base.
func splitExt(s string) (string, string) {
	ext := path.Ext(s)
	if !isSafeExt(strings.ToLower(ext)) {
		return s, ""
	}
	return s[:len(s)-len(ext)], strings.ToLower(ext)
}

// slug keeps [a-z0-9]. Runs of separators ('-', '_', '.', spaces) become one '-',
// anything else is dropped.
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z':
			b.WriteRune(r)
			dash = false
		case r == '-' || r == '_' || r == '.' || unicode.IsSpace(r):
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func isSafeExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
