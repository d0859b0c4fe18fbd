// Package uploads validates and stores user-submitted images under the media
// root. Images are decoded, downscaled to a bounded edge and re-encoded as
// JPEG so the stored files are uniform regardless of what clients send.
package uploads

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/enspm-hub/hub-backend/internal/apperr"
)

const MaxUploadBytes = 5 << 20 // 5 MiB

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Store saves images below Root, one subdirectory per kind of asset.
type Store struct {
	Root string
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

// SaveImage validates, downscales and stores an uploaded image. maxEdge bounds
// the longer side of the stored copy. It returns the path relative to the
// media root, which is what gets persisted on the entity.
func (s *Store) SaveImage(fh *multipart.FileHeader, subdir string, maxEdge int) (string, error) {
	if fh.Size > MaxUploadBytes {
		return "", apperr.BadRequest("Le fichier dépasse la taille maximale de 5 Mo.")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", apperr.BadRequest("Format de fichier non supporté. Formats acceptés : jpg, jpeg, png, webp.")
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", apperr.BadRequest("Le fichier n'est pas une image valide.")
	}

	dst := downscale(src, maxEdge)

	rel := filepath.Join(subdir, uuid.NewString()+".jpg")
	abs := filepath.Join(s.Root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	out, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return rel, nil
}

// Remove deletes a previously stored file. A missing file is not an error,
// the pointer on the entity is the source of truth.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func downscale(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return src
	}
	scale := float64(maxEdge) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
