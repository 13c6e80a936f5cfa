package service

import (
	"context"
	"io"
	"testing"

	"study_planner_backend/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func detailFixture(t *testing.T) (*fixture, *TaskDetailService, *memoryBlobs, Todo) {
	t.Helper()
	f := newFixture(t)
	blobs := &memoryBlobs{}
	svc := NewTaskDetailService(f.guard, blobs, 1)
	todo, err := f.planner.AddTask(context.Background(), f.mentee, "2024-06-05", "풀이 올리기", "수학")
	require.NoError(t, err)
	return f, svc, blobs, todo
}

func TestUploadAndOpen(t *testing.T) {
	f, svc, blobs, todo := detailFixture(t)
	ctx := context.Background()

	files := fileHeaders(t, map[string][]byte{"풀이.png": pngHeader})
	d, err := svc.Upload(ctx, f.mentee, todo.ID, planner.SideMentee, files)
	require.NoError(t, err)
	require.Len(t, d.MenteeFiles, 1)
	ref := d.MenteeFiles[0]
	assert.True(t, ref.Image)
	assert.Equal(t, "image/png", ref.ContentType)
	assert.Len(t, blobs.objects, 1)

	got, rc, err := svc.OpenFile(ctx, f.mentor, todo.ID, ref.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, ref.ID, got.ID)

	_, _, err = svc.OpenFile(ctx, f.other, todo.ID, ref.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)
}

func TestUploadSideGate(t *testing.T) {
	f, svc, blobs, todo := detailFixture(t)
	ctx := context.Background()
	files := fileHeaders(t, map[string][]byte{"memo.txt": []byte("hello")})

	_, err := svc.Upload(ctx, f.mentee, todo.ID, planner.SideMentor, files)
	assert.ErrorIs(t, err, planner.ErrForbidden)
	assert.Empty(t, blobs.objects)

	d, err := svc.Upload(ctx, f.mentor, todo.ID, planner.SideMentor, files)
	require.NoError(t, err)
	assert.Len(t, d.MentorFiles, 1)

	_, err = svc.Upload(ctx, f.mentee, "missing", planner.SideMentee, files)
	assert.ErrorIs(t, err, planner.ErrNotFound)

	_, err = svc.Upload(ctx, f.mentee, todo.ID, planner.SideMentee, nil)
	assert.ErrorIs(t, err, planner.ErrValidation)
}

func TestUploadRejectsOversizeAndCleansUp(t *testing.T) {
	f, svc, blobs, todo := detailFixture(t)
	ctx := context.Background()

	big := make([]byte, 2<<20)
	copy(big, pngHeader)
	_, err := svc.Upload(ctx, f.mentee, todo.ID, planner.SideMentee, fileHeaders(t, map[string][]byte{"big.png": big}))
	assert.ErrorIs(t, err, planner.ErrValidation)

	blobs.failOn = ".txt"
	files := fileHeaders(t, map[string][]byte{"a.png": pngHeader, "b.txt": []byte("note")})
	_, err = svc.Upload(ctx, f.mentee, todo.ID, planner.SideMentee, files)
	assert.Error(t, err)
	assert.Empty(t, blobs.objects)
	assert.Empty(t, f.store.Detail(planner.DetailKey{Date: "2024-06-05", TaskID: todo.ID}).MenteeFiles)
}

func TestNoteAndRemoveFile(t *testing.T) {
	f, svc, blobs, todo := detailFixture(t)
	ctx := context.Background()

	d, err := svc.SetNote(ctx, f.mentee, todo.ID, planner.SideMentee, "3번 모르겠어요")
	require.NoError(t, err)
	assert.Equal(t, "3번 모르겠어요", d.MenteeNote)

	d, err = svc.SetNote(ctx, f.mentor, todo.ID, planner.SideMentor, "공식 다시 보기")
	require.NoError(t, err)
	assert.Equal(t, "3번 모르겠어요", d.MenteeNote)
	assert.Equal(t, "공식 다시 보기", d.MentorNote)

	d, err = svc.Upload(ctx, f.mentee, todo.ID, planner.SideMentee, fileHeaders(t, map[string][]byte{"a.png": pngHeader}))
	require.NoError(t, err)
	fileID := d.MenteeFiles[0].ID

	_, err = svc.RemoveFile(ctx, f.mentor, todo.ID, planner.SideMentee, fileID)
	assert.ErrorIs(t, err, planner.ErrForbidden)

	ref, err := svc.RemoveFile(ctx, f.mentee, todo.ID, planner.SideMentee, fileID)
	require.NoError(t, err)
	assert.Equal(t, fileID, ref.ID)
	assert.Empty(t, blobs.objects)

	d, err = svc.Detail(ctx, f.mentor, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, d.MenteeFiles)
}

func TestDeleteTaskRemovesAttachments(t *testing.T) {
	f, svc, blobs, todo := detailFixture(t)
	ctx := context.Background()
	f.planner.Blobs = blobs

	files := fileHeaders(t, map[string][]byte{"풀이.png": pngHeader})
	_, err := svc.Upload(ctx, f.mentee, todo.ID, planner.SideMentee, files)
	require.NoError(t, err)
	require.Len(t, blobs.objects, 1)

	require.NoError(t, f.planner.DeleteTask(ctx, f.mentee, "2024-06-05", todo.ID))
	assert.Empty(t, blobs.objects)
	assert.NotContains(t, f.store.Snapshot().Details, planner.DetailKey{Date: "2024-06-05", TaskID: todo.ID})

	_, err = svc.Detail(ctx, f.mentee, todo.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)
}
