package file

import (
	domain "filevault-api/internal/domain/file"
)

func ToResponseFile(fDomain domain.Record) File {
	return File{
		ID:           fDomain.ID,
		Name:         fDomain.Name,
		MimeType:     fDomain.MimeType,
		SizeBytes:    fDomain.SizeBytes,
		LastModified: fDomain.LastModified,
		Category:     string(fDomain.Category),
	}
}

func ToResponseFiles(fDomain domain.Records) Files {
	fs := make(Files, len(fDomain))
	for idx, f := range fDomain {
		fs[idx] = ToResponseFile(*f)
	}

	return fs
}

func ToUploadResponse(res *domain.UploadResult) UploadResponse {
	out := UploadResponse{
		Accepted: ToResponseFiles(res.Accepted),
		Rejected: make([]RejectedFile, len(res.Rejected)),
	}
	for idx, r := range res.Rejected {
		out.Rejected[idx] = RejectedFile{Name: r.Name, Reason: r.Reason}
	}

	return out
}
