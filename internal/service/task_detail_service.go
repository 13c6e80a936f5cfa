package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/util"
	"study_planner_backend/pkg/logger"
	"study_planner_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobStore is what task details need from the storage service.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var _ BlobStore = (*StorageService)(nil)

// TaskDetailService 할 일 상세(메모, 첨부 파일). 상세는 할 일 ID 로만 찾는다
type TaskDetailService struct {
	Guard          *planner.Guard
	Storage        BlobStore
	MaxUploadBytes int64
}

func NewTaskDetailService(guard *planner.Guard, storage BlobStore, maxUploadMB int64) *TaskDetailService {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &TaskDetailService{
		Guard:          guard,
		Storage:        storage,
		MaxUploadBytes: maxUploadMB << 20,
	}
}

func (s *TaskDetailService) keyOf(taskID string) (planner.DetailKey, error) {
	dt, ok := s.Guard.Store().FindTask(taskID)
	if !ok {
		return planner.DetailKey{}, fmt.Errorf("%w: task %s", planner.ErrNotFound, taskID)
	}
	return planner.DetailKey{Date: dt.Date, TaskID: dt.ID}, nil
}

func (s *TaskDetailService) Detail(ctx context.Context, a planner.Actor, taskID string) (planner.TaskDetail, error) {
	key, err := s.keyOf(taskID)
	if err != nil {
		return planner.TaskDetail{}, err
	}
	return s.Guard.Detail(ctx, a, key)
}

func (s *TaskDetailService) SetNote(ctx context.Context, a planner.Actor, taskID string, side planner.FileSide, note string) (planner.TaskDetail, error) {
	key, err := s.keyOf(taskID)
	if err != nil {
		return planner.TaskDetail{}, err
	}
	return s.Guard.SetNote(ctx, a, key, side, note)
}

func blobKey(key planner.DetailKey, side planner.FileSide, filename string) string {
	return fmt.Sprintf("details/%s/%s/%s/%s%s", key.Date, key.TaskID, side, uuid.NewString(), util.UploadExt(filename))
}

// Upload stores every file and then attaches them in one write. Blobs already
// stored are removed again when a later step fails.
func (s *TaskDetailService) Upload(ctx context.Context, a planner.Actor, taskID string, side planner.FileSide, files []*multipart.FileHeader) (planner.TaskDetail, error) {
	key, err := s.keyOf(taskID)
	if err != nil {
		return planner.TaskDetail{}, err
	}
	if len(files) == 0 {
		return planner.TaskDetail{}, fmt.Errorf("%w: no files", planner.ErrValidation)
	}
	if err := s.Guard.CanAttach(ctx, a, key, side); err != nil {
		return planner.TaskDetail{}, err
	}

	refs := make([]planner.FileRef, 0, len(files))
	cleanup := func() {
		for _, r := range refs {
			if err := s.Storage.Delete(ctx, r.Key); err != nil {
				logger.Log.Warn("Failed to remove orphaned upload", zap.String("key", r.Key), zap.Error(err))
			}
		}
	}

	for _, fh := range files {
		ref, err := s.store(ctx, key, side, fh)
		if err != nil {
			cleanup()
			return planner.TaskDetail{}, err
		}
		refs = append(refs, ref)
	}

	d, err := s.Guard.AttachFiles(ctx, a, key, side, refs)
	if err != nil {
		cleanup()
		return planner.TaskDetail{}, err
	}
	logger.Log.Info("Task detail files uploaded",
		zap.String("task", taskID),
		zap.String("side", string(side)),
		zap.Int("count", len(refs)),
	)
	return d, nil
}

func (s *TaskDetailService) store(ctx context.Context, key planner.DetailKey, side planner.FileSide, fh *multipart.FileHeader) (planner.FileRef, error) {
	if fh.Size > s.MaxUploadBytes {
		return planner.FileRef{}, fmt.Errorf("%w: %s exceeds %d MB", planner.ErrValidation, fh.Filename, s.MaxUploadBytes>>20)
	}
	src, err := fh.Open()
	if err != nil {
		return planner.FileRef{}, err
	}
	defer src.Close()

	contentType, err := util.SniffUpload(src)
	if err != nil {
		return planner.FileRef{}, err
	}

	blob := blobKey(key, side, fh.Filename)
	url, err := s.Storage.Upload(ctx, blob, src, fh.Size, contentType)
	if err != nil {
		return planner.FileRef{}, err
	}
	monitoring.UploadedBytes.Add(float64(fh.Size))
	return planner.NewFileRef(fh.Filename, fh.Size, contentType, blob, url), nil
}

// RemoveFile detaches the file and then deletes its blob. A failed blob
// delete is only logged; the detail no longer points at it.
func (s *TaskDetailService) RemoveFile(ctx context.Context, a planner.Actor, taskID string, side planner.FileSide, fileID string) (planner.FileRef, error) {
	key, err := s.keyOf(taskID)
	if err != nil {
		return planner.FileRef{}, err
	}
	ref, err := s.Guard.RemoveFile(ctx, a, key, side, fileID)
	if err != nil {
		return planner.FileRef{}, err
	}
	if ref.Key != "" {
		if err := s.Storage.Delete(ctx, ref.Key); err != nil {
			logger.Log.Warn("Failed to delete blob", zap.String("key", ref.Key), zap.Error(err))
		}
	}
	return ref, nil
}

// OpenFile streams an attachment from either side to anyone who may read the
// detail. The caller closes the reader.
func (s *TaskDetailService) OpenFile(ctx context.Context, a planner.Actor, taskID, fileID string) (planner.FileRef, io.ReadCloser, error) {
	d, err := s.Detail(ctx, a, taskID)
	if err != nil {
		return planner.FileRef{}, nil, err
	}
	for _, list := range [][]planner.FileRef{d.MenteeFiles, d.MentorFiles} {
		for _, f := range list {
			if f.ID != fileID {
				continue
			}
			rc, err := s.Storage.Open(ctx, f.Key)
			if err != nil {
				return planner.FileRef{}, nil, err
			}
			return f, rc, nil
		}
	}
	return planner.FileRef{}, nil, fmt.Errorf("%w: file %s", planner.ErrNotFound, fileID)
}
