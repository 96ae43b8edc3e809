package atlas

// TextureID identifies a page texture owned by a TextureUploader.
// Zero is never issued.
type TextureID uint64

// InvalidTexture is the zero TextureID.
const InvalidTexture TextureID = 0

// TextureUploader is the rendering collaborator that owns page textures.
//
// The manager creates one texture per page when the page is created,
// uploads the full page on FlushDirty and destroys the textures on Reset or
// Close. It never reads texture contents back.
type TextureUploader interface {
	// CreateTexture creates a size x size texture and returns its id.
	CreateTexture(size int) (TextureID, error)

	// UploadTexture replaces the contents of texture id with pixels,
	// row-major 0xAARRGGBB values with stride size. Implementations must not
	// retain pixels after returning.
	UploadTexture(id TextureID, pixels []uint32, size int) error

	// DestroyTexture releases texture id.
	DestroyTexture(id TextureID)
}

// logicalUploader issues texture ids without backing storage. It is used
// when no uploader is configured.
type logicalUploader struct {
	next TextureID
}

func (u *logicalUploader) CreateTexture(int) (TextureID, error) {
	u.next++
	return u.next, nil
}

func (u *logicalUploader) UploadTexture(TextureID, []uint32, int) error { return nil }

func (u *logicalUploader) DestroyTexture(TextureID) {}
