package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

type fileRecord struct {
	ID         file.ID   `json:"id"`
	OwnerID    user.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	BlobPath   string    `json:"blob_path"`
	ShareURL   string    `json:"share_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (r fileRecord) toDomain() *file.File {
	return &file.File{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Name:       r.Name,
		Size:       r.SizeBytes,
		MimeType:   r.MimeType,
		BlobPath:   r.BlobPath,
		ShareURL:   r.ShareURL,
		UploadedAt: r.UploadedAt,
	}
}

// ErrDuplicateFile mirrors the UNIQUE constraints on files.id and files.blob_path.
var ErrDuplicateFile = errors.New("duplicate file record")

// FileRepository keeps each owner's records newest first, so listing is a plain read.
type FileRepository struct {
	store  *Store
	logger *zap.Logger
}

func NewFileRepository(store *Store, logger *zap.Logger) file.Repository {
	return &FileRepository{store: store, logger: logger}
}

func (r *FileRepository) loadOwner(owner user.UUID) ([]fileRecord, error) {
	var recs []fileRecord
	err := r.store.read(r.store.ownerPath(owner.String()), &recs)
	return recs, err
}

func (r *FileRepository) loadIndex() (map[string]user.UUID, error) {
	idx := map[string]user.UUID{}
	err := r.store.read(r.store.docPath(indexDoc), &idx)
	return idx, err
}

func (r *FileRepository) CreateFile(_ context.Context, req *file.File) (*file.File, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	recs, err := r.loadOwner(req.OwnerID)
	if err != nil {
		return nil, err
	}
	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}

	if _, taken := idx[req.ID.String()]; taken {
		return nil, fmt.Errorf("file id %s: %w", req.ID, ErrDuplicateFile)
	}
	// blob paths are prefixed with the owner id, so the owner list is the whole scope
	for _, rec := range recs {
		if rec.ID == req.ID || rec.BlobPath == req.BlobPath {
			return nil, fmt.Errorf("blob path %s: %w", req.BlobPath, ErrDuplicateFile)
		}
	}

	rec := fileRecord{
		ID:         req.ID,
		OwnerID:    req.OwnerID,
		Name:       req.Name,
		SizeBytes:  req.Size,
		MimeType:   req.MimeType,
		BlobPath:   req.BlobPath,
		ShareURL:   req.ShareURL,
		UploadedAt: req.UploadedAt,
	}

	// The index is written first. An index entry without an owner record resolves to
	// nothing, while an owner record is visible to List as soon as it is written.
	idx[rec.ID.String()] = rec.OwnerID
	if err = r.store.write(r.store.docPath(indexDoc), idx); err != nil {
		return nil, err
	}
	if err = r.store.write(r.store.ownerPath(req.OwnerID.String()), append([]fileRecord{rec}, recs...)); err != nil {
		delete(idx, rec.ID.String())
		if rbErr := r.store.write(r.store.docPath(indexDoc), idx); rbErr != nil {
			r.logger.Warn("stale file index entry", zap.Error(rbErr), zap.String("file_id", rec.ID.String()))
		}
		return nil, err
	}

	return rec.toDomain(), nil
}

func (r *FileRepository) FetchFilesByOwner(_ context.Context, ownerID user.UUID) (file.Files, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	recs, err := r.loadOwner(ownerID)
	if err != nil {
		return nil, err
	}

	fs := make(file.Files, len(recs))
	for i, rec := range recs {
		fs[i] = rec.toDomain()
	}
	return fs, nil
}

func (r *FileRepository) FetchOwnedFile(_ context.Context, ownerID user.UUID, id file.ID) (*file.File, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.findOwned(ownerID, id)
}

func (r *FileRepository) findOwned(ownerID user.UUID, id file.ID) (*file.File, error) {
	recs, err := r.loadOwner(ownerID)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec.toDomain(), nil
		}
	}
	return nil, nil
}

func (r *FileRepository) FetchFileByID(_ context.Context, id file.ID) (*file.File, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}
	owner, ok := idx[id.String()]
	if !ok {
		return nil, nil
	}
	return r.findOwned(owner, id)
}

func (r *FileRepository) DeleteFile(_ context.Context, ownerID user.UUID, id file.ID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	recs, err := r.loadOwner(ownerID)
	if err != nil {
		return false, err
	}

	kept := make([]fileRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(recs) {
		return false, nil
	}

	if err = r.store.write(r.store.ownerPath(ownerID.String()), kept); err != nil {
		return false, err
	}
	// the record is gone; a stale index entry only costs a lookup
	idx, err := r.loadIndex()
	if err == nil {
		delete(idx, id.String())
		err = r.store.write(r.store.docPath(indexDoc), idx)
	}
	if err != nil {
		r.logger.Warn("stale file index entry", zap.Error(err), zap.String("file_id", id.String()))
	}
	return true, nil
}
