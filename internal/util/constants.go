package util

const (
	StorageLocal      = "local"
	StorageMinio      = "minio"
	StorageOSS        = "oss"
	StorageCloudinary = "cloudinary"
)

// DefaultMaxImageBytes caps a question graph image at 5MB.
const DefaultMaxImageBytes int64 = 5 << 20

var (
	AllowedImageExtensions = []string{".jpeg", ".jpg", ".png", ".gif"}
	AllowedImageMimeTypes  = []string{"image/jpeg", "image/png", "image/gif"}
)
