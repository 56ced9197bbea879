package file

import (
	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
)

func ToResponseFile(fDomain file.File) File {
	var f = File{
		ID:         fDomain.ID,
		Name:       fDomain.Name,
		Size:       fDomain.Size,
		SizeHuman:  file.FormatSize(fDomain.Size),
		MimeType:   fDomain.MimeType,
		Kind:       file.Kind(fDomain.MimeType),
		ShareURL:   fDomain.ShareURL,
		AccessURL:  fDomain.AccessURL,
		UploadedAt: fDomain.UploadedAt,
	}

	return f
}

func ToResponseFiles(fsDomain file.Files) Files {
	fs := make(Files, len(fsDomain))
	for idx, f := range fsDomain {
		fs[idx] = ToResponseFile(*f)
	}

	return fs
}
