// Package local stores blobs on an afero filesystem and serves them through
// HMAC-signed, expiring links under /blobs/.
package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const RoutePrefix = "/blobs/"

var (
	ErrBadPath   = errors.New("invalid blob path")
	ErrExpired   = errors.New("link expired")
	ErrSignature = errors.New("invalid signature")
)

type Store struct {
	fs     afero.Fs
	root   string
	origin string
	key    []byte
	now    func() time.Time
}

func New(fs afero.Fs, root, origin, signingKey string) (*Store, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		fs:     fs,
		root:   root,
		origin: strings.TrimRight(origin, "/"),
		key:    []byte(signingKey),
		now:    time.Now,
	}, nil
}

// resolve maps a blob path onto the store root, refusing anything that escapes it.
func (s *Store) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if p == "" || clean == "/" || clean[1:] != strings.TrimPrefix(p, "/") {
		return "", ErrBadPath
	}
	return path.Join(s.root, clean), nil
}

func (s *Store) Put(_ context.Context, p string, body io.Reader, _ int64, _ string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err = s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return err
	}

	tmp := full + ".part"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return err
	}
	if _, err = io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return err
	}
	if err = f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return s.fs.Rename(tmp, full)
}

// Remove succeeds when the blob is already gone.
func (s *Store) Remove(_ context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err = s.fs.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) SignedURL(_ context.Context, p string, ttl time.Duration) (string, error) {
	if _, err := s.resolve(p); err != nil {
		return "", err
	}
	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("sig", s.sign(p, expires))
	return s.PublicURL(p) + "?" + q.Encode(), nil
}

func (s *Store) PublicURL(p string) string {
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.origin + RoutePrefix + strings.Join(segs, "/")
}

func (s *Store) sign(p, expires string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(strings.TrimPrefix(p, "/")))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a link produced by SignedURL.
func (s *Store) Verify(p, expires, sig string) error {
	if _, err := s.resolve(p); err != nil {
		return err
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrSignature
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(p, expires))) {
		return ErrSignature
	}
	if s.now().Unix() > exp {
		return ErrExpired
	}
	return nil
}

// Open returns the blob for reading; os.ErrNotExist when it is missing.
func (s *Store) Open(p string) (afero.File, os.FileInfo, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.fs.Open(full)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s: %w", p, os.ErrNotExist)
	}
	return f, info, nil
}
