// store.go
//
// Conexo admin API: accounts, listings and moderation for the community directory
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of conexo-admin.
// conexo-admin is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// conexo-admin is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with conexo-admin.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/localnerve/conexo-admin/internal/config"
)

var (
	ErrNotFound      = errors.New("storage: object not found")
	ErrNotConfigured = errors.New("storage: bucket not configured")
	errInvalidKey    = errors.New("storage: object key is required")
)

// ObjectStore is the blob store holding uploaded media
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	// Delete removes the object. A missing object returns ErrNotFound.
	Delete(ctx context.Context, key string) error
}

// GCSStore stores objects in a Cloud Storage bucket
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore constructs a GCSStore from configuration. STORAGE_ENDPOINT
// points the client at an emulator and disables authentication.
func NewGCSStore(ctx context.Context, cfg *config.Config) (*GCSStore, error) {
	bucket := strings.TrimSpace(cfg.StorageBucket)
	if bucket == "" {
		return nil, ErrNotConfigured
	}

	var opts []option.ClientOption
	if cfg.StorageEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.StorageEndpoint), option.WithoutAuthentication())
	} else if cfg.StorageCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.StorageCredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create client: %w", err)
	}

	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put uploads body under key
func (s *GCSStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if strings.TrimSpace(key) == "" {
		return errInvalidKey
	}

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	return nil
}

// Delete removes key from the bucket
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return errInvalidKey
	}

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// Unconfigured is the store used when no bucket is set. Uploads fail
// with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Put(context.Context, string, string, io.Reader) error {
	return ErrNotConfigured
}

func (Unconfigured) Delete(context.Context, string) error {
	return ErrNotConfigured
}
