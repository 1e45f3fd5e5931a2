package iso

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bgrewell/isobuild/pkg/iso9660"
	"github.com/bgrewell/isobuild/pkg/iso9660/writer"
	"github.com/bgrewell/isobuild/pkg/option"
)

// Build assembles an image and returns it together with its layout.
func Build(ctx context.Context, opts ...option.CreateOption) (*writer.Image, error) {
	img, err := writer.New(option.Apply(opts...)).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create ISO: %w", err)
	}
	return img, nil
}

// Create assembles an image and returns its bytes.
func Create(opts ...option.CreateOption) ([]byte, error) {
	img, err := Build(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return img.Data, nil
}

// Write assembles an image and writes it to w in a single call. Nothing is written when the build fails.
func Write(w io.Writer, opts ...option.CreateOption) error {
	data, err := Create(opts...)
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("failed to write ISO: %w", err)
	}
	return nil
}

// Open decodes an existing ISO image file for inspection.
func Open(location string, opts ...option.OpenOption) (*iso9660.ISO9660, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open ISO: %w", err)
	}
	img, err := iso9660.Open(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return img, nil
}

// Verify decodes data and checks that it reads back as an image.
func Verify(data []byte, opts ...option.OpenOption) (*iso9660.ISO9660, error) {
	return iso9660.Open(bytes.NewReader(data), opts...)
}
