// Package media turns chat attachments into model prompt parts.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
)

const (
	// MaxImageSide bounds the longer side of images sent to the model.
	MaxImageSide = 1024
	jpegQuality  = 85
	maxParallel  = 4
)

type Downloader interface {
	Download(ctx context.Context, a core.Attachment) ([]byte, error)
}

func IsImage(a core.Attachment) bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

func IsVideo(a core.Attachment) bool {
	return strings.HasPrefix(a.ContentType, "video/")
}

// Supported reports whether the attachment can become a prompt part.
func Supported(a core.Attachment) bool {
	return IsImage(a) || IsVideo(a)
}

// Part converts downloaded attachment bytes into a prompt part. Images,
// including the first frame of a GIF, are downscaled and re-encoded as JPEG;
// formats the decoder does not know are passed through as is.
func Part(ctx context.Context, a core.Attachment, data []byte) (core.Part, error) {
	switch {
	case IsVideo(a):
		return core.BlobPart(core.PartVideo, a.ContentType, data), nil
	case IsImage(a):
		out, err := Shrink(data, MaxImageSide)
		if err != nil {
			log.FromCtx(ctx).Debug().Err(err).Str("file", a.Filename).Msg("image not decodable, sending original bytes")
			return core.BlobPart(core.PartImage, a.ContentType, data), nil
		}
		return core.BlobPart(core.PartImage, "image/jpeg", out), nil
	default:
		return core.Part{}, fmt.Errorf("unsupported attachment type %q", a.ContentType)
	}
}

// Shrink decodes an image, fits it into a maxSide square keeping the aspect
// ratio and encodes it as JPEG.
func Shrink(data []byte, maxSide uint) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if uint(b.Dx()) > maxSide || uint(b.Dy()) > maxSide {
		img = resize.Thumbnail(maxSide, maxSide, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Load downloads the supported attachments concurrently and returns their
// parts in attachment order. Unsupported attachments are skipped.
func Load(ctx context.Context, d Downloader, atts []core.Attachment) ([]core.Part, error) {
	var supported []core.Attachment
	for _, a := range atts {
		if Supported(a) {
			supported = append(supported, a)
		}
	}
	if len(supported) == 0 {
		return nil, nil
	}

	parts := make([]core.Part, len(supported))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, a := range supported {
		g.Go(func() error {
			data, err := d.Download(gctx, a)
			if err != nil {
				return fmt.Errorf("download %s: %w", a.Filename, err)
			}
			p, err := Part(gctx, a, data)
			if err != nil {
				return err
			}
			parts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// FirstImage returns the first image attachment, if any.
func FirstImage(atts []core.Attachment) (core.Attachment, bool) {
	for _, a := range atts {
		if IsImage(a) {
			return a, true
		}
	}
	return core.Attachment{}, false
}
