package file

import (
	domain "github.com/Nithin3003/cloud-share-it/internal/domain/file"
)

func fromDBModel(model *File) *domain.File {
	var f = &domain.File{
		ID:      model.ID,
		OwnerID: model.OwnerID,

		Name:     model.Name,
		Size:     model.SizeBytes,
		MimeType: model.MimeType,
		BlobPath: model.BlobPath,
		ShareURL: model.ShareURL,

		UploadedAt: model.UploadedAt,
	}

	return f
}

func fromDBModels(models *Files) domain.Files {
	fs := make(domain.Files, len(*models))
	for idx, f := range *models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}
