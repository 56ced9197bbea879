package file

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) file.Repository {
	return &Repository{db: db}
}

func scanFile(row pgx.Row) (*File, error) {
	f := new(File)
	err := row.Scan(
		&f.ID,
		&f.OwnerID,

		&f.Name,
		&f.SizeBytes,
		&f.MimeType,
		&f.BlobPath,
		&f.ShareURL,

		&f.UploadedAt,
	)
	return f, err
}

func (r *Repository) fetchOne(ctx context.Context, query string, args ...any) (*file.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) CreateFile(ctx context.Context, req *file.File) (*file.File, error) {
	f, err := scanFile(r.db.QueryRow(
		ctx,
		InsertFile,
		req.ID, req.OwnerID, req.Name, req.Size, req.MimeType, req.BlobPath, req.ShareURL, req.UploadedAt,
	))
	if err != nil {
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchFilesByOwner(ctx context.Context, ownerID user.UUID) (file.Files, error) {
	rows, err := r.db.Query(ctx, SelectFilesByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fs := Files{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fs), nil
}

func (r *Repository) FetchOwnedFile(ctx context.Context, ownerID user.UUID, id file.ID) (*file.File, error) {
	return r.fetchOne(ctx, SelectOwnedFile, id, ownerID)
}

func (r *Repository) FetchFileByID(ctx context.Context, id file.ID) (*file.File, error) {
	return r.fetchOne(ctx, SelectFileByID, id)
}

func (r *Repository) DeleteFile(ctx context.Context, ownerID user.UUID, id file.ID) (bool, error) {
	tag, err := r.db.Exec(ctx, DeleteOwnedFile, id, ownerID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
