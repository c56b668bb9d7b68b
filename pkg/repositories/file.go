package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gametypes "github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/klauspost/compress/zstd"
)

var _ SnapshotRepository = &FileRepository{}

// FileRepository keeps the snapshot in a single zstd-compressed JSON file.
type FileRepository struct {
	path    string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewFileRepository(path string) (*FileRepository, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %v", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %v", err)
	}

	return &FileRepository{
		path:    path,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (r *FileRepository) Close(ctx context.Context) error {
	r.decoder.Close()
	return r.encoder.Close()
}

// SaveSnapshot replaces the file atomically by writing a sibling temp file and renaming it.
func (r *FileRepository) SaveSnapshot(ctx context.Context, snapshot *gametypes.RegistrySnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	compressed := r.encoder.EncodeAll(data, nil)

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %v", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %v", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %v", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %v", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %v", err)
	}

	return nil
}

func (r *FileRepository) LoadSnapshot(ctx context.Context) (*gametypes.RegistrySnapshot, error) {
	compressed, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to read snapshot: %v", err)
	}

	data, err := r.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %v", err)
	}

	return decodeSnapshot(data)
}
