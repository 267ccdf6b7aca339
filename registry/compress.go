package registry

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// compressArchiveLayer zstd-compresses archive bytes for transport.
func compressArchiveLayer(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// decodeArchiveLayer recovers archive bytes from a fetched layer according
// to its media type.
func decodeArchiveLayer(data []byte, mediaType string) ([]byte, error) {
	switch mediaType {
	case MediaTypeArchive:
		return data, nil
	case MediaTypeArchiveZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("init zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress archive layer: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported layer media type %q", ErrInvalidManifest, mediaType)
	}
}
