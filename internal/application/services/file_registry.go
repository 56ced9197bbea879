package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/mq"
)

const (
	sniffLen          = 3072
	signConcurrency   = 8
	deleteRetries     = 3
	defaultRetryDelay = 100 * time.Millisecond
	genericMimeType   = "application/octet-stream"
)

type RegistryOptions struct {
	// PublicOrigin prefixes share links: "<origin>/file/<id>".
	PublicOrigin string
	AccessURLTTL time.Duration
	RetryDelay   time.Duration
}

type FileRegistry struct {
	logger   *zap.Logger
	blobs    ports.BlobStore
	files    file.Repository
	users    user.Repository
	events   ports.EventPublisher
	mCounter *prometheus.CounterVec
	opts     RegistryOptions
	now      func() time.Time
}

func NewFileRegistry(
	logger *zap.Logger,
	blobs ports.BlobStore,
	files file.Repository,
	users user.Repository,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
	opts RegistryOptions,
) ports.FileRegistry {
	return newFileRegistry(logger, blobs, files, users, events, mCounter, opts)
}

func newFileRegistry(
	logger *zap.Logger,
	blobs ports.BlobStore,
	files file.Repository,
	users user.Repository,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
	opts RegistryOptions,
) *FileRegistry {
	opts.PublicOrigin = strings.TrimRight(opts.PublicOrigin, "/")
	if opts.AccessURLTTL <= 0 {
		opts.AccessURLTTL = time.Hour
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	return &FileRegistry{
		logger:   logger,
		blobs:    blobs,
		files:    files,
		users:    users,
		events:   events,
		mCounter: mCounter,
		opts:     opts,
		now:      time.Now,
	}
}

// ShareURL is the durable link for a file id.
func ShareURL(origin string, id file.ID) string {
	return strings.TrimRight(origin, "/") + "/file/" + id.String()
}

func (fr *FileRegistry) authorize(ctx context.Context, owner user.UUID) error {
	if owner == uuid.Nil {
		return errs.ErrNotAuthenticated
	}
	u, err := fr.users.FetchUserByID(ctx, owner)
	if err != nil {
		return &errs.StorageError{Op: "fetch principal", Err: err}
	}
	if u == nil {
		return errs.ErrNotAuthenticated
	}
	return nil
}

// sign fills AccessURL. A signing failure leaves it empty; the record is still returned.
func (fr *FileRegistry) sign(ctx context.Context, f *file.File) {
	u, err := fr.blobs.SignedURL(ctx, f.BlobPath, fr.opts.AccessURLTTL)
	if err != nil {
		fr.logger.Warn("mint access url", zap.Error(err), zap.String("file_id", f.ID.String()))
		f.AccessURL = ""
		return
	}
	f.AccessURL = u
}

func (fr *FileRegistry) Upload(ctx context.Context, owner user.UUID, in ports.UploadInput) (*file.File, error) {
	if in.Body == nil {
		return nil, &errs.ValidationError{Field: "file", Reason: "is required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, &errs.ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Size < 0 {
		return nil, &errs.ValidationError{Field: "size", Reason: "must not be negative"}
	}
	if err := fr.authorize(ctx, owner); err != nil {
		return nil, err
	}

	body, mimeType, err := detectMimeType(in.Body, in.MimeType)
	if err != nil {
		return nil, &errs.StorageError{Op: "read upload", Err: err}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate file id: %w", err)
	}
	now := fr.now().UTC()
	blobPath, err := genBlobPath(owner, in.Name, mimeType, now)
	if err != nil {
		return nil, fmt.Errorf("generate blob path: %w", err)
	}

	counted, err := countBytes(body)
	if err != nil {
		return nil, &errs.StorageError{Op: "read upload", Err: err}
	}
	if err = fr.blobs.Put(ctx, blobPath, counted, in.Size, mimeType); err != nil {
		fr.mCounter.WithLabelValues("file_upload_error").Inc()
		return nil, &errs.StorageError{Op: "put blob", Err: err}
	}

	rec, err := fr.files.CreateFile(ctx, &file.File{
		ID:         id,
		OwnerID:    owner,
		Name:       in.Name,
		Size:       counted.Count(),
		MimeType:   mimeType,
		BlobPath:   blobPath,
		ShareURL:   ShareURL(fr.opts.PublicOrigin, id),
		UploadedAt: now,
	})
	if err != nil {
		fr.mCounter.WithLabelValues("file_upload_error").Inc()
		fr.compensateUpload(ctx, owner, id, blobPath, err)
		return nil, &errs.StorageError{Op: "create record", Err: err}
	}

	fr.sign(ctx, rec)

	e := mq.NewEvent(mq.FileUploaded, owner.String(), rec.ID.String(), rec.BlobPath)
	e.Name, e.Size = rec.Name, rec.Size
	fr.events.Publish(e)
	fr.mCounter.WithLabelValues("file_uploaded_total").Inc()

	return rec, nil
}

// compensateUpload removes a blob whose record could not be written. When that fails
// too the blob is handed to the cleanup consumer.
func (fr *FileRegistry) compensateUpload(ctx context.Context, owner user.UUID, id file.ID, blobPath string, cause error) {
	rmErr := fr.blobs.Remove(context.WithoutCancel(ctx), blobPath)
	if rmErr == nil {
		fr.logger.Warn("upload rolled back", zap.Error(cause), zap.String("blob_path", blobPath))
		return
	}

	// alert
	fr.logger.Error("orphaned blob after failed upload",
		zap.Error(rmErr),
		zap.NamedError("cause", cause),
		zap.String("blob_path", blobPath),
	)
	fr.events.Publish(mq.NewEvent(mq.BlobOrphaned, owner.String(), id.String(), blobPath))
}

func (fr *FileRegistry) List(ctx context.Context, owner user.UUID) (file.Files, error) {
	if err := fr.authorize(ctx, owner); err != nil {
		return nil, err
	}

	fls, err := fr.files.FetchFilesByOwner(ctx, owner)
	if err != nil {
		return nil, &errs.StorageError{Op: "list records", Err: err}
	}
	if fls == nil {
		fls = file.Files{}
	}

	var g errgroup.Group
	g.SetLimit(signConcurrency)
	for _, f := range fls {
		f := f
		g.Go(func() error {
			fr.sign(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	return fls, nil
}

func (fr *FileRegistry) GetByID(ctx context.Context, owner user.UUID, id file.ID) (*file.File, error) {
	if err := fr.authorize(ctx, owner); err != nil {
		return nil, err
	}

	f, err := fr.files.FetchOwnedFile(ctx, owner, id)
	if err != nil {
		return nil, &errs.StorageError{Op: "fetch record", Err: err}
	}
	if f == nil {
		return nil, nil
	}

	fr.sign(ctx, f)

	return f, nil
}

// DeleteByID removes the blob first. A record that outlives every retry is reported
// as a PartialDeleteError and handed to the cleanup consumer.
func (fr *FileRegistry) DeleteByID(ctx context.Context, owner user.UUID, id file.ID) error {
	if err := fr.authorize(ctx, owner); err != nil {
		return err
	}

	f, err := fr.files.FetchOwnedFile(ctx, owner, id)
	if err != nil {
		return &errs.StorageError{Op: "fetch record", Err: err}
	}
	if f == nil {
		return &errs.NotFoundError{Resource: "file", ID: id.String()}
	}

	if err = fr.blobs.Remove(ctx, f.BlobPath); err != nil {
		fr.mCounter.WithLabelValues("file_delete_error").Inc()
		return &errs.StorageError{Op: "remove blob", Err: err}
	}

	backoff := retry.WithMaxRetries(deleteRetries, retry.NewExponential(fr.opts.RetryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := fr.files.DeleteFile(ctx, owner, id); err != nil {
			fr.logger.Warn("delete record attempt failed", zap.Error(err), zap.String("file_id", id.String()))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		fr.mCounter.WithLabelValues("file_delete_error").Inc()
		// alert
		fr.logger.Error("orphaned record after blob removal",
			zap.Error(err),
			zap.String("file_id", id.String()),
			zap.String("blob_path", f.BlobPath),
		)
		fr.events.Publish(mq.NewEvent(mq.RecordOrphaned, owner.String(), id.String(), f.BlobPath))
		return &errs.PartialDeleteError{ID: id.String(), BlobPath: f.BlobPath, Err: err}
	}

	fr.events.Publish(mq.NewEvent(mq.FileDeleted, owner.String(), id.String(), f.BlobPath))
	fr.mCounter.WithLabelValues("file_deleted_total").Inc()

	return nil
}

// detectMimeType sniffs the content when the declared type is missing or generic.
// A seekable body is rewound after sniffing; any other body is replayed from the
// sniffed prefix.
func detectMimeType(body io.Reader, declared string) (io.Reader, string, error) {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != genericMimeType {
		return body, declared, nil
	}

	var start int64
	seeker, seekable := body.(io.Seeker)
	if seekable {
		pos, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, "", err
		}
		start = pos
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", err
	}
	head = head[:n]
	detected := mimetype.Detect(head).String()

	if seekable {
		if _, err = seeker.Seek(start, io.SeekStart); err != nil {
			return nil, "", err
		}
		return body, detected, nil
	}
	return io.MultiReader(bytes.NewReader(head), body), detected, nil
}

type byteCounter interface {
	io.Reader
	Count() int64
}

// countBytes wraps body so the stored size is what was actually read. Seekable
// bodies stay seekable: object stores rewind them to checksum or retry, and the
// count follows the read position.
func countBytes(body io.Reader) (byteCounter, error) {
	c := &countingReader{r: body}
	s, ok := body.(io.Seeker)
	if !ok {
		return c, nil
	}
	base, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &countingReadSeeker{countingReader: c, s: s, base: base}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) Count() int64 { return c.n }

type countingReadSeeker struct {
	*countingReader
	s    io.Seeker
	base int64
}

func (c *countingReadSeeker) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekStart {
		offset += c.base
	}
	pos, err := c.s.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	c.n = pos - c.base
	return c.n, nil
}
