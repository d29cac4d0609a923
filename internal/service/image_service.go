package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"sweetshop/internal/gate"
	"sweetshop/internal/ids"
	"sweetshop/internal/media/sniffer"
	"sweetshop/internal/media/svg"
	"sweetshop/internal/models"
)

// MaxImageBytes caps item image uploads.
const MaxImageBytes = 5 << 20

// ObjectPutter is satisfied by *minio.Client.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type ImageInput struct {
	ItemID string
	File   multipart.File
	Header *multipart.FileHeader
}

type ImageService struct {
	objects   ObjectPutter
	bucket    string
	publicURL string
	inventory Inventory
	gate      *gate.Gate
	log       zerolog.Logger
}

func NewImageService(objects ObjectPutter, bucket, publicURL string, inventory Inventory, sessions Sessions, log zerolog.Logger) *ImageService {
	return &ImageService{
		objects:   objects,
		bucket:    bucket,
		publicURL: publicURL,
		inventory: inventory,
		gate:      gate.New(sessions, log),
		log:       log,
	}
}

// Attach stores the uploaded image and points the item's ImageRef at it.
func (s *ImageService) Attach(ctx context.Context, token string, input ImageInput) (models.Item, error) {
	return gate.Call(ctx, s.gate, token, models.RoleAdmin, func(ctx context.Context, _ models.Account) (models.Item, error) {
		if _, err := s.inventory.Get(ctx, input.ItemID); err != nil {
			return models.Item{}, err
		}

		data, result, err := s.readImage(input)
		if err != nil {
			return models.Item{}, err
		}

		objectKey := path.Join("items", input.ItemID, fmt.Sprintf("%s.%s", ids.New(), result.Type.Extension()))
		_, err = s.objects.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: result.MIME,
		})
		if err != nil {
			return models.Item{}, fmt.Errorf("put object: %w", err)
		}

		url := s.buildPublicURL(objectKey)
		item, err := s.inventory.Update(ctx, input.ItemID, models.ItemPatch{ImageRef: &url})
		if err != nil {
			return models.Item{}, err
		}
		s.log.Info().Str("item_id", item.ID).Str("object", objectKey).Int("bytes", len(data)).Msg("item image stored")
		return item, nil
	})
}

func (s *ImageService) readImage(input ImageInput) ([]byte, sniffer.Result, error) {
	if input.File == nil || input.Header == nil {
		return nil, sniffer.Result{}, models.NewValidationError("file", "an image file is required")
	}
	if input.Header.Size > MaxImageBytes {
		return nil, sniffer.Result{}, models.NewValidationError("file", "image must be 5MB or smaller")
	}

	data, err := io.ReadAll(io.LimitReader(input.File, MaxImageBytes+1))
	if err != nil {
		return nil, sniffer.Result{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, sniffer.Result{}, models.NewValidationError("file", "empty file")
	}
	if len(data) > MaxImageBytes {
		return nil, sniffer.Result{}, models.NewValidationError("file", "image must be 5MB or smaller")
	}

	result, err := sniffer.DetectHead(data)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) {
			return nil, sniffer.Result{}, models.NewValidationError("file", "unsupported image type")
		}
		return nil, sniffer.Result{}, err
	}

	declared := sniffer.MimeTypeFromHTTP(http.Header(input.Header.Header))
	if declared != "" && declared != "application/octet-stream" && declared != result.MIME {
		return nil, sniffer.Result{}, models.NewValidationError("file", fmt.Sprintf("content type mismatch: declared %s, actual %s", declared, result.MIME))
	}

	if result.Type == sniffer.TypeSVG {
		if data, err = svg.Sanitize(data); err != nil {
			return nil, sniffer.Result{}, models.NewValidationError("file", err.Error())
		}
	}
	return data, result, nil
}

func (s *ImageService) buildPublicURL(objectKey string) string {
	base := strings.TrimSuffix(s.publicURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, objectKey)
}
