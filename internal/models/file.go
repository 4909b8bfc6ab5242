package models

import "strings"

// StoredFile identifies an uploaded blob and its view URL.
type StoredFile struct {
	ID     string `json:"id"`
	Bucket string `json:"bucket"`
	URL    string `json:"url"`
}

// Ref is the form stored in plant and post documents: "<bucket>/<id>".
func (f StoredFile) Ref() string {
	return f.Bucket + "/" + f.ID
}

// ParseFileRef splits a stored reference. Absolute URLs and anything else
// that is not "<bucket>/<id>" report ok=false.
func ParseFileRef(ref string) (bucket, id string, ok bool) {
	if strings.Contains(ref, ":") {
		return "", "", false
	}
	bucket, id, ok = strings.Cut(ref, "/")
	if !ok || bucket == "" || id == "" || strings.Contains(id, "/") {
		return "", "", false
	}
	return bucket, id, true
}
