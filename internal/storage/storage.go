package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Ошибки хранилища.
var (
	// ErrUnsupportedScheme — схема URI не поддерживается.
	ErrUnsupportedScheme = errors.New("unsupported storage scheme")

	// ErrBackendNotConfigured — бэкенд для схемы не настроен.
	ErrBackendNotConfigured = errors.New("storage backend is not configured")

	// ErrInvalidLocation — URI не содержит обязательных частей.
	ErrInvalidLocation = errors.New("invalid storage location")
)

// Схемы URI.
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
)

// Location — разобранный URI артефакта.
type Location struct {
	// Scheme — file или s3.
	Scheme string

	// Bucket — бакет для s3.
	Bucket string

	// Key — путь внутри бакета для s3 или путь в файловой системе.
	Key string
}

// String возвращает URI в каноническом виде.
func (l Location) String() string {
	if l.Scheme == SchemeS3 {
		return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
	}
	return l.Key
}

// Ext возвращает расширение без точки в нижнем регистре.
func (l Location) Ext() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(l.Key), "."))
}

// ParseLocation разбирает URI.
//
// Строка без схемы считается локальным путём.
func ParseLocation(uri string) (Location, error) {
	if uri == "" {
		return Location{}, fmt.Errorf("%w: empty uri", ErrInvalidLocation)
	}

	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		return Location{Scheme: SchemeFile, Key: uri}, nil
	}

	switch strings.ToLower(scheme) {
	case SchemeFile:
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
		}
		if u.Path == "" {
			return Location{}, fmt.Errorf("%w: %s", ErrInvalidLocation, uri)
		}
		return Location{Scheme: SchemeFile, Key: u.Path}, nil

	case SchemeS3:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: s3 uri needs bucket and key: %s", ErrInvalidLocation, uri)
		}
		return Location{Scheme: SchemeS3, Bucket: bucket, Key: key}, nil

	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// ObjectRef — описание записанного артефакта.
type ObjectRef struct {
	URI         string    `json:"uri"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}

// newObjectRef считает размер и SHA-256 содержимого.
func newObjectRef(uri, contentType string, content []byte) *ObjectRef {
	hash := sha256.Sum256(content)
	return &ObjectRef{
		URI:         uri,
		ContentType: contentType,
		Size:        int64(len(content)),
		Checksum:    hex.EncodeToString(hash[:]),
		CreatedAt:   time.Now().UTC(),
	}
}

// Backend — хранилище одного вида.
type Backend interface {
	// Open открывает артефакт для чтения.
	Open(ctx context.Context, loc Location) (io.ReadCloser, error)

	// Put записывает артефакт целиком.
	Put(ctx context.Context, loc Location, content []byte, contentType string) (*ObjectRef, error)
}

// Router выбирает бэкенд по схеме URI.
type Router struct {
	local Backend
	s3    Backend
}

// NewRouter создаёт маршрутизатор. s3 может быть nil: тогда URI s3://
// дают ErrBackendNotConfigured.
func NewRouter(local, s3 Backend) *Router {
	if local == nil {
		local = NewLocal()
	}
	return &Router{local: local, s3: s3}
}

// backend возвращает бэкенд для URI.
func (r *Router) backend(uri string) (Backend, Location, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, Location{}, err
	}

	switch loc.Scheme {
	case SchemeS3:
		if r.s3 == nil {
			return nil, loc, fmt.Errorf("%w: s3", ErrBackendNotConfigured)
		}
		return r.s3, loc, nil
	default:
		return r.local, loc, nil
	}
}

// Open открывает артефакт по URI.
func (r *Router) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	b, loc, err := r.backend(uri)
	if err != nil {
		return nil, err
	}
	return b.Open(ctx, loc)
}

// Put записывает артефакт по URI.
func (r *Router) Put(ctx context.Context, uri string, content []byte, contentType string) (*ObjectRef, error) {
	b, loc, err := r.backend(uri)
	if err != nil {
		return nil, err
	}
	return b.Put(ctx, loc, content, contentType)
}
