package storage

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BlobStore is the narrow contract the document linker and the file routes
// depend on. Paths are slash-separated keys relative to the store root.
type BlobStore interface {
	Upload(path string, r io.Reader) (int64, error)
	Delete(path string) error
	Open(path string) (io.ReadCloser, error)
	Exists(path string) bool
	SignedURL(path string, ttl time.Duration) (string, error)
	VerifySignedToken(token string) (string, error)
}

// DiskBlobStore keeps blobs on the local filesystem under a root directory and
// hands out HMAC-signed, expiring download tokens for them.
type DiskBlobStore struct {
	root      string
	secret    []byte
	publicURL string
}

// NewDiskBlobStore creates the store. Root comes from BLOB_DIR, the signing
// secret from FILE_URL_SECRET and the public base URL from PUBLIC_BASE_URL.
func NewDiskBlobStore() *DiskBlobStore {
	root := os.Getenv("BLOB_DIR")
	if root == "" {
		root = "/var/www/craftmarket-files/"
	}
	secret := os.Getenv("FILE_URL_SECRET")
	if secret == "" {
		log.Println("FILE_URL_SECRET not set, using insecure default")
		secret = "craftmarket-dev"
	}
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:9000"
	}
	return &DiskBlobStore{root: root, secret: []byte(secret), publicURL: strings.TrimRight(base, "/")}
}

// resolve maps a blob key to an absolute file path and rejects traversal.
func (s *DiskBlobStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absRoot, clean)
	if !strings.HasPrefix(full, absRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob path %q escapes store root", path)
	}
	return full, nil
}

func (s *DiskBlobStore) Upload(path string, r io.Reader) (int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return 0, fmt.Errorf("unable to create directory %s: %w", filepath.Dir(full), err)
	}
	dst, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("unable to create blob file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, r)
	if err != nil {
		// Half-written file is useless, remove it
		os.Remove(full)
		return 0, fmt.Errorf("unable to write blob: %w", err)
	}
	return n, nil
}

func (s *DiskBlobStore) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to delete blob %s: %w", path, err)
	}
	return nil
}

func (s *DiskBlobStore) Open(path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *DiskBlobStore) Exists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// SignedURL returns a download URL whose token embeds the blob path and an
// expiry, signed with the store secret.
func (s *DiskBlobStore) SignedURL(path string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"path": path,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return s.publicURL + "/api/files?token=" + signed, nil
}

// VerifySignedToken validates a download token and returns the blob path.
func (s *DiskBlobStore) VerifySignedToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired file token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid file token claims")
	}
	path, _ := claims["path"].(string)
	if path == "" {
		return "", fmt.Errorf("file token missing path")
	}
	return path, nil
}
