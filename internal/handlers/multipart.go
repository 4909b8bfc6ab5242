package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/planthead/planthead-backend/internal/services"
)

func uploadOf(fh *multipart.FileHeader) services.Upload {
	return services.Upload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

func uploadsOf(headers []*multipart.FileHeader) []services.Upload {
	out := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		out = append(out, uploadOf(fh))
	}
	return out
}

func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, "Failed to parse form: "+err.Error(), nil)
		return false
	}
	return true
}

// formFiles returns the files posted under field, or nil.
func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}
