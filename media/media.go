// Package media is the opaque upload capability: callers hand in bytes and
// get back a reference string to store on posts and comments.
package media

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"chirp/apperr"
)

type Store interface {
	Upload(ctx context.Context, r io.Reader, name string) (string, error)
}

// CloudinaryStore uploads into a fixed folder and returns the secure URL as
// the media reference.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(url, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "cloudinary configuration", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, name string) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       name,
		Transformation: "c_limit,w_800,h_800,q_auto",
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Transient, "upload media", err)
	}
	return res.SecureURL, nil
}
