package file

const (
	SelectFilesByOwner = `
		SELECT id, owner_id, name, size_bytes, mime_type, blob_path, share_url, uploaded_at
		FROM files
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`
	SelectFileByID = `
		SELECT id, owner_id, name, size_bytes, mime_type, blob_path, share_url, uploaded_at
		FROM files
		WHERE id = $1
	`
	SelectOwnedFile = `
		SELECT id, owner_id, name, size_bytes, mime_type, blob_path, share_url, uploaded_at
		FROM files
		WHERE id = $1 AND owner_id = $2
	`
	InsertFile = `
		INSERT INTO files (id, owner_id, name, size_bytes, mime_type, blob_path, share_url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING
		  id, owner_id, name, size_bytes, mime_type, blob_path, share_url, uploaded_at
	`
	DeleteOwnedFile = `
		DELETE FROM files
		WHERE id = $1 AND owner_id = $2
	`
)
