package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/domain"
	"coachly/fitness-backend/internal/repository"
	"coachly/fitness-backend/internal/storage"
)

// --- Error Definitions ---
var (
	ErrTrainingPlanNotFound     = errors.New("training plan not found")
	ErrPlanNotAssignedToClient  = errors.New("training plan does not belong to this client")
	ErrDayNotFound              = errors.New("day not found in training plan")
	ErrProgressPhotoNotAllowed  = errors.New("unsupported progress photo content type")
	ErrProgressPhotoSizeInvalid = errors.New("invalid progress photo file size")
)

const maxProgressPhotoSize = 20 * 1024 * 1024 // 20 MiB

// PhotoUploadRequest is what the client sends before uploading a progress
// photo; the response carries the presigned URL and the object key the client
// must confirm with afterwards.
type PhotoUploadRequest struct {
	FileName    string
	FileSize    int64
	ContentType string
}

type PhotoUploadResult struct {
	UploadURL string
	ObjectKey string
}

// ProgressPhotoView pairs stored metadata with a fresh download URL.
type ProgressPhotoView struct {
	Photo       domain.ProgressPhoto
	DownloadURL string
}

type ClientService interface {
	GetMyTrainingPlans(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingPlan, error)
	GetMyTrainingPlan(ctx context.Context, clientID, planID primitive.ObjectID) (*domain.TrainingPlan, error)
	SetDayCompletion(ctx context.Context, clientID, planID primitive.ObjectID, dayID string, completed bool) error
	CompleteMyPlan(ctx context.Context, clientID, planID primitive.ObjectID) error

	RequestProgressPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, req PhotoUploadRequest) (*PhotoUploadResult, error)
	ConfirmProgressPhoto(ctx context.Context, clientID primitive.ObjectID, objectKey, fileName, contentType string, fileSize int64, takenAt *time.Time) (*domain.ProgressPhoto, error)
	GetMyProgressPhotos(ctx context.Context, clientID primitive.ObjectID) ([]ProgressPhotoView, error)
}

// --- Service Implementation ---

type clientService struct {
	planRepo  repository.TrainingPlanRepository
	photoRepo repository.ProgressPhotoRepository
	files     storage.FileStorage
}

// NewClientService creates a new instance of clientService.
func NewClientService(planRepo repository.TrainingPlanRepository, photoRepo repository.ProgressPhotoRepository, files storage.FileStorage) ClientService {
	return &clientService{
		planRepo:  planRepo,
		photoRepo: photoRepo,
		files:     files,
	}
}

// === Training Plans ===

func (s *clientService) GetMyTrainingPlans(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.planRepo.GetByClientID(ctx, clientID)
}

// GetMyTrainingPlan fetches a single plan and verifies the caller owns it.
func (s *clientService) GetMyTrainingPlan(ctx context.Context, clientID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingPlanNotFound
		}
		return nil, err
	}
	if plan.ClientID != clientID {
		return nil, ErrPlanNotAssignedToClient
	}
	return plan, nil
}

// SetDayCompletion marks or clears the completion timestamp of a single day.
func (s *clientService) SetDayCompletion(ctx context.Context, clientID, planID primitive.ObjectID, dayID string, completed bool) error {
	plan, err := s.GetMyTrainingPlan(ctx, clientID, planID)
	if err != nil {
		return err
	}
	if !planHasDay(plan, dayID) {
		return ErrDayNotFound
	}

	var completedAt *time.Time
	if completed {
		now := time.Now()
		completedAt = &now
	}
	err = s.planRepo.SetDayCompletion(ctx, planID, dayID, completedAt)
	if errors.Is(err, repository.ErrUpdateFailed) {
		return ErrDayNotFound
	}
	return err
}

// CompleteMyPlan marks the whole plan finished. A completed plan is excluded
// from overdue detection.
func (s *clientService) CompleteMyPlan(ctx context.Context, clientID, planID primitive.ObjectID) error {
	if _, err := s.GetMyTrainingPlan(ctx, clientID, planID); err != nil {
		return err
	}
	now := time.Now()
	return s.planRepo.SetPlanCompletion(ctx, planID, &now)
}

func planHasDay(plan *domain.TrainingPlan, dayID string) bool {
	for i := range plan.Weeks {
		for j := range plan.Weeks[i].Days {
			if plan.Weeks[i].Days[j].ID == dayID {
				return true
			}
		}
	}
	return false
}

// === Progress Photos ===

// RequestProgressPhotoUploadURL validates the upload request and hands back a
// presigned PUT URL. Nothing is persisted until the client confirms.
func (s *clientService) RequestProgressPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, req PhotoUploadRequest) (*PhotoUploadResult, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if err := validatePhotoUpload(req.ContentType, req.FileSize); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("progress/%s/%s", clientID.Hex(), uuid.NewString())
	uploadURL, err := s.files.GeneratePresignedUploadURL(ctx, objectKey, req.ContentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return &PhotoUploadResult{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmProgressPhoto records photo metadata after the client has uploaded
// the object to the presigned URL.
func (s *clientService) ConfirmProgressPhoto(ctx context.Context, clientID primitive.ObjectID, objectKey, fileName, contentType string, fileSize int64, takenAt *time.Time) (*domain.ProgressPhoto, error) {
	if clientID == primitive.NilObjectID || objectKey == "" {
		return nil, errors.New("client ID and object key are required")
	}
	if err := validatePhotoUpload(contentType, fileSize); err != nil {
		return nil, err
	}

	photo := &domain.ProgressPhoto{
		ClientID:    clientID,
		ObjectKey:   objectKey,
		FileName:    fileName,
		FileSize:    fileSize,
		ContentType: contentType,
		TakenAt:     takenAt,
	}
	photoID, err := s.photoRepo.Create(ctx, photo)
	if err != nil {
		return nil, err
	}
	photo.ID = photoID
	return photo, nil
}

// GetMyProgressPhotos lists the client's photos, each with a fresh presigned
// download URL. A presign failure for one photo fails the whole call so the
// client never sees a partial gallery.
func (s *clientService) GetMyProgressPhotos(ctx context.Context, clientID primitive.ObjectID) ([]ProgressPhotoView, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	photos, err := s.photoRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	views := make([]ProgressPhotoView, 0, len(photos))
	for _, p := range photos {
		url, err := s.files.GeneratePresignedDownloadURL(ctx, p.ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to generate download URL for %s: %w", p.ObjectKey, err)
		}
		views = append(views, ProgressPhotoView{Photo: p, DownloadURL: url})
	}
	return views, nil
}

func validatePhotoUpload(contentType string, fileSize int64) error {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp", "image/heic":
	default:
		return ErrProgressPhotoNotAllowed
	}
	if fileSize <= 0 || fileSize > maxProgressPhotoSize {
		return ErrProgressPhotoSizeInvalid
	}
	return nil
}
