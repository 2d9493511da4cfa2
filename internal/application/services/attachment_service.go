package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
	"github.com/fundroad/fundroad-go/internal/domain/repositories"
	"github.com/fundroad/fundroad-go/internal/infrastructure/media"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/infrastructure/security"
	"github.com/fundroad/fundroad-go/internal/infrastructure/storage"
)

var (
	ErrAttachmentTooLarge = errors.New("attachment exceeds the upload limit")
	ErrEmptyAttachment    = errors.New("attachment is empty")
)

// Upload is one file received for a resource.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// AttachmentService stores resource attachments in object storage, with WebP
// thumbnails for images, and hands out presigned download links.
type AttachmentService struct {
	attachmentRepo repositories.AttachmentRepository
	catalog        *journey.Catalog
	store          storage.ObjectStore
	images         *media.ImageProcessor
	maxBytes       int64
	presignTTL     time.Duration
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
	now            func() time.Time
}

// NewAttachmentService creates the service. A nil store disables uploads and
// listings with storage.ErrNotConfigured.
func NewAttachmentService(attachmentRepo repositories.AttachmentRepository, catalog *journey.Catalog, store storage.ObjectStore, images *media.ImageProcessor, maxBytes int64, presignTTL time.Duration, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		catalog:        catalog,
		store:          store,
		images:         images,
		maxBytes:       maxBytes,
		presignTTL:     presignTTL,
		logger:         logger,
		perfTracker:    perfTracker,
		now:            time.Now,
	}
}

// Upload stores a file for a resource and records it
func (s *AttachmentService) Upload(ctx context.Context, ref ResourceRef, upload Upload) (*resources.Attachment, error) {
	if s.store == nil {
		return nil, storage.ErrNotConfigured
	}
	sub, err := s.catalog.ResolveSubStep(ref.StepID, ref.SubStep)
	if err != nil {
		return nil, err
	}
	if !resources.IsKnownType(ref.ResourceType) {
		return nil, fmt.Errorf("%w: unknown type %q", resources.ErrInvalidEnvelope, ref.ResourceType)
	}

	marker := s.perfTracker.StartOperationWithContext(ctx, "resource:upload_attachment", ref.UserID)
	defer marker.Complete()

	body, err := io.ReadAll(io.LimitReader(upload.Body, s.maxBytes+1))
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(body)) > s.maxBytes {
		marker.SetError(ErrAttachmentTooLarge)
		return nil, ErrAttachmentTooLarge
	}
	if len(body) == 0 {
		marker.SetError(ErrEmptyAttachment)
		return nil, ErrEmptyAttachment
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id := security.GenerateULID()
	prefix := path.Join("attachments", ref.UserID, fmt.Sprint(ref.StepID), sub.Key, ref.ResourceType, id)

	attachment := &resources.Attachment{
		ID:           id,
		UserID:       ref.UserID,
		StepID:       ref.StepID,
		SubstepTitle: sub.Title,
		ResourceType: ref.ResourceType,
		FileName:     cleanFileName(upload.FileName),
		ContentType:  contentType,
		Size:         int64(len(body)),
		CreatedAt:    s.now().UTC(),
	}
	attachment.ObjectKey = path.Join(prefix, attachment.FileName)

	if err := s.store.Put(ctx, attachment.ObjectKey, bytes.NewReader(body), attachment.Size, contentType); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	if s.images != nil && media.IsImage(contentType) {
		thumb, err := s.images.Thumbnail(bytes.NewReader(body), contentType)
		if err != nil {
			s.logger.Storage().Warn("Thumbnail generation failed", "attachmentId", id, "error", err.Error())
		} else {
			thumbKey := path.Join(prefix, "thumbnail.webp")
			if err := s.store.Put(ctx, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), "image/webp"); err != nil {
				s.logger.Storage().Warn("Thumbnail upload failed", "attachmentId", id, "error", err.Error())
			} else {
				attachment.ThumbnailKey = thumbKey
			}
		}
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		marker.SetError(err)
		s.removeObjects(ctx, attachment)
		return nil, fmt.Errorf("record attachment: %w", err)
	}

	s.sign(ctx, attachment)
	s.logger.Storage().Info("Attachment uploaded", "attachmentId", id, "userId", ref.UserID, "size", attachment.Size, "thumbnail", attachment.ThumbnailKey != "")
	return attachment, nil
}

// List returns a resource's attachments with fresh download links.
func (s *AttachmentService) List(ctx context.Context, ref ResourceRef) ([]*resources.Attachment, error) {
	if s.store == nil {
		return nil, storage.ErrNotConfigured
	}
	sub, err := s.catalog.ResolveSubStep(ref.StepID, ref.SubStep)
	if err != nil {
		return nil, err
	}

	list, err := s.attachmentRepo.FindByResource(ctx, ref.UserID, ref.StepID, sub.Title, ref.ResourceType)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	if list == nil {
		list = []*resources.Attachment{}
	}
	for _, attachment := range list {
		s.sign(ctx, attachment)
	}
	return list, nil
}

func (s *AttachmentService) sign(ctx context.Context, a *resources.Attachment) {
	if url, err := s.store.PresignGet(ctx, a.ObjectKey, s.presignTTL); err == nil {
		a.DownloadURL = url
	} else {
		s.logger.Storage().Warn("Presign failed", "key", a.ObjectKey, "error", err.Error())
	}
	if a.ThumbnailKey != "" {
		if url, err := s.store.PresignGet(ctx, a.ThumbnailKey, s.presignTTL); err == nil {
			a.ThumbnailURL = url
		}
	}
}

func (s *AttachmentService) removeObjects(ctx context.Context, a *resources.Attachment) {
	for _, key := range []string{a.ObjectKey, a.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Storage().Warn("Failed to remove orphaned object", "key", key, "error", err.Error())
		}
	}
}

// cleanFileName keeps the base name and replaces characters that are unsafe in object keys.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if cleaned == "" || cleaned == "." || cleaned == ".." || cleaned == "/" || cleaned == "_" {
		return "file"
	}
	return cleaned
}
