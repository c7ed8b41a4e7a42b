package chatclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cofounder/pkg/api"
	"cofounder/pkg/logger"
)

// uploadConcurrency bounds how many files upload at once.
const uploadConcurrency = 3

// File is a local file picked for upload.
type File struct {
	// Path is set for files read from disk.
	Path     string
	Name     string
	Size     int64
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// FileFromPath describes the file at path, sniffing its content type.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("detect type of %s: %w", path, err)
	}
	return File{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mt.String(),
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func (f File) baseType() string {
	t, _, _ := strings.Cut(f.MIMEType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

func (f File) isImage() bool { return strings.HasPrefix(f.baseType(), "image/") }

// extension returns the name's extension without the dot, falling back to the one
// registered for the content type.
func (f File) extension() string {
	if ext := strings.TrimPrefix(filepath.Ext(f.Name), "."); ext != "" {
		return ext
	}
	if mt := mimetype.Lookup(f.baseType()); mt != nil {
		return strings.TrimPrefix(mt.Extension(), ".")
	}
	return "bin"
}

// PreviewFunc creates a local preview of an image and returns its reference and the
// function that frees it.
type PreviewFunc func(f File) (ref string, release func(), err error)

// Attachment is a pending file as exposed to callers.
type Attachment struct {
	Name       string
	Size       int64
	MIMEType   string
	PreviewRef string
}

type pending struct {
	file    File
	preview string
	release func()
	once    *sync.Once
}

func (p pending) free() {
	if p.release != nil {
		p.once.Do(p.release)
	}
}

// Uploader validates picked files, keeps them pending and uploads them before a send.
type Uploader struct {
	session *Session
	backend Backend
	notify  Notifier
	preview PreviewFunc
	log     *logger.Logger

	mu        sync.Mutex
	files     []pending
	uploading bool
}

// NewUploader binds an uploader to session. Pending previews are released when the
// session closes. preview may be nil, in which case images get no preview.
func NewUploader(session *Session, backend Backend, notify Notifier, preview PreviewFunc, log *logger.Logger) *Uploader {
	u := &Uploader{
		session: session,
		backend: backend,
		notify:  notify,
		preview: preview,
		log:     log.With("component", "Uploader"),
	}
	if session != nil {
		session.OnClose(u.Close)
	}
	return u
}

// SelectFiles adds files to the pending set. Files of a disallowed type or above the size
// limit are rejected with a notification each. Valid files beyond the pending limit are
// dropped without notice. It returns how many files were added.
func (u *Uploader) SelectFiles(files []File) int {
	added := 0
	for _, f := range files {
		if !slices.Contains(api.AllowedMIMETypes, f.baseType()) {
			u.notify.Notify(Notification{
				Title:       "Unsupported file type",
				Description: fmt.Sprintf("%s is not a supported file type", f.Name),
				Variant:     VariantDestructive,
			})
			continue
		}
		if f.Size > api.MaxUploadBytes {
			u.notify.Notify(Notification{
				Title:       "File too large",
				Description: fmt.Sprintf("%s is larger than 20MB", f.Name),
				Variant:     VariantDestructive,
			})
			continue
		}

		u.mu.Lock()
		full := len(u.files) >= api.MaxPendingFiles
		u.mu.Unlock()
		if full {
			continue
		}

		p := pending{file: f, once: new(sync.Once)}
		if f.isImage() && u.preview != nil {
			ref, release, err := u.preview(f)
			if err != nil {
				u.log.Warn("Preview not created", "file", f.Name, "error", err)
			} else {
				p.preview, p.release = ref, release
			}
		}

		u.mu.Lock()
		if len(u.files) >= api.MaxPendingFiles {
			u.mu.Unlock()
			p.free()
			continue
		}
		u.files = append(u.files, p)
		u.mu.Unlock()
		added++
	}
	return added
}

// RemoveFile releases the preview of the pending file at index and drops it.
func (u *Uploader) RemoveFile(index int) error {
	u.mu.Lock()
	if index < 0 || index >= len(u.files) {
		u.mu.Unlock()
		return fmt.Errorf("no pending file at index %d", index)
	}
	p := u.files[index]
	u.files = slices.Delete(u.files, index, index+1)
	u.mu.Unlock()

	p.free()
	return nil
}

func (u *Uploader) Pending() []Attachment {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Attachment, 0, len(u.files))
	for _, p := range u.files {
		out = append(out, Attachment{
			Name:       p.file.Name,
			Size:       p.file.Size,
			MIMEType:   p.file.MIMEType,
			PreviewRef: p.preview,
		})
	}
	return out
}

// Uploading reports whether an upload batch is in flight.
func (u *Uploader) Uploading() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.uploading
}

// UploadFiles uploads files under keys scoped to the signed in user and returns the public
// URLs of those that succeeded, in input order. Each failure is reported through a
// notification and skipped.
func (u *Uploader) UploadFiles(ctx context.Context, files []File) []string {
	if !u.session.Active() || len(files) == 0 {
		return nil
	}

	u.setUploading(true)
	defer u.setUploading(false)

	urls := make([]string, len(files))
	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			url, err := u.uploadOne(ctx, f)
			if err != nil {
				u.log.Error("Upload failed", "file", f.Name, "error", err)
				u.notify.Notify(Notification{
					Title:       "Upload failed",
					Description: "Failed to upload " + f.Name,
					Variant:     VariantDestructive,
				})
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()

	return slices.DeleteFunc(urls, func(s string) bool { return s == "" })
}

func (u *Uploader) uploadOne(ctx context.Context, f File) (string, error) {
	if f.Open == nil {
		return "", errors.New("file cannot be opened")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	key := fmt.Sprintf("%s/%s.%s", u.session.UserID, uuid.NewString(), f.extension())
	res, err := u.backend.Upload(ctx, key, rc, f.baseType())
	if err != nil {
		return "", err
	}
	if res.PublicURL == "" {
		return "", fmt.Errorf("no public URL returned for %s", key)
	}
	return res.PublicURL, nil
}

// Send uploads every pending file, releases their previews and clears the pending set.
// It returns the URLs of the files that uploaded.
func (u *Uploader) Send(ctx context.Context) []string {
	u.mu.Lock()
	batch := u.files
	u.files = nil
	u.mu.Unlock()

	defer func() {
		for _, p := range batch {
			p.free()
		}
	}()

	files := make([]File, 0, len(batch))
	for _, p := range batch {
		files = append(files, p.file)
	}
	return u.UploadFiles(ctx, files)
}

// Close releases every remaining preview and clears the pending set.
func (u *Uploader) Close() {
	u.mu.Lock()
	batch := u.files
	u.files = nil
	u.mu.Unlock()

	for _, p := range batch {
		p.free()
	}
}

func (u *Uploader) setUploading(v bool) {
	u.mu.Lock()
	u.uploading = v
	u.mu.Unlock()
}
