package controller

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/service"
	"study_planner_backend/internal/util"
	"study_planner_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TodoDetailController 할 일 상세: 멘티 메모/파일, 멘토 피드백/파일
type TodoDetailController struct {
	DetailService *service.TaskDetailService
	MaxUploadMB   int64
}

func NewTodoDetailController(detailService *service.TaskDetailService, maxUploadMB int64) *TodoDetailController {
	return &TodoDetailController{DetailService: detailService, MaxUploadMB: maxUploadMB}
}

type NoteRequest struct {
	Note string `json:"note"`
}

// Detail godoc
// @Summary 할 일 상세 조회
// @Tags 할 일 상세
// @Produce  json
// @Param   todoId path string true "할 일 ID"
// @Success 200 {object} util.Response{data=planner.TaskDetail}
// @Router /api/todos/{todoId}/detail [get]
func (c *TodoDetailController) Detail(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	d, err := c.DetailService.Detail(ctx.Request.Context(), a, ctx.Param("todoId"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

func (c *TodoDetailController) setNote(ctx *gin.Context, side planner.FileSide) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req NoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	d, err := c.DetailService.SetNote(ctx.Request.Context(), a, ctx.Param("todoId"), side, req.Note)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// MenteeNote godoc
// @Summary 멘티 메모 저장
// @Tags 할 일 상세
// @Accept  json
// @Produce  json
// @Param   todoId path string true "할 일 ID"
// @Param   body body NoteRequest true "메모"
// @Success 200 {object} util.Response{data=planner.TaskDetail}
// @Router /api/todos/{todoId}/detail/mentee-note [patch]
func (c *TodoDetailController) MenteeNote(ctx *gin.Context) {
	c.setNote(ctx, planner.SideMentee)
}

// MentorFeedback godoc
// @Summary 멘토 피드백 저장
// @Tags 할 일 상세
// @Accept  json
// @Produce  json
// @Param   todoId path string true "할 일 ID"
// @Param   body body NoteRequest true "피드백"
// @Success 200 {object} util.Response{data=planner.TaskDetail}
// @Router /api/todos/{todoId}/detail/mentor-feedback [patch]
func (c *TodoDetailController) MentorFeedback(ctx *gin.Context) {
	c.setNote(ctx, planner.SideMentor)
}

func (c *TodoDetailController) upload(ctx *gin.Context, side planner.FileSide) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	// 전체 요청 크기 제한 (파일 여러 개를 고려해 4배)
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.MaxUploadMB<<22)
	form, err := ctx.MultipartForm()
	if err != nil {
		util.BadRequest(ctx, "파일 업로드 형식 오류")
		return
	}
	d, err := c.DetailService.Upload(ctx.Request.Context(), a, ctx.Param("todoId"), side, form.File["files"])
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Created(ctx, d)
}

// MenteeFiles godoc
// @Summary 멘티 파일 첨부
// @Tags 할 일 상세
// @Accept  multipart/form-data
// @Produce  json
// @Param   todoId path string true "할 일 ID"
// @Param   files formData file true "첨부 파일 (여러 개 가능)"
// @Success 201 {object} util.Response{data=planner.TaskDetail}
// @Router /api/todos/{todoId}/detail/mentee-files [post]
func (c *TodoDetailController) MenteeFiles(ctx *gin.Context) {
	c.upload(ctx, planner.SideMentee)
}

// MentorFiles godoc
// @Summary 멘토 파일 첨부
// @Tags 할 일 상세
// @Accept  multipart/form-data
// @Produce  json
// @Param   todoId path string true "할 일 ID"
// @Param   files formData file true "첨부 파일 (여러 개 가능)"
// @Success 201 {object} util.Response{data=planner.TaskDetail}
// @Router /api/todos/{todoId}/detail/mentor-files [post]
func (c *TodoDetailController) MentorFiles(ctx *gin.Context) {
	c.upload(ctx, planner.SideMentor)
}

// RemoveFile godoc
// @Summary 첨부 파일 삭제
// @Tags 할 일 상세
// @Produce  json
// @Param   todoId path string true "할 일 ID"
// @Param   side path string true "mentee 또는 mentor"
// @Param   fileId path string true "파일 ID"
// @Success 200 {object} util.Response{data=planner.FileRef}
// @Router /api/todos/{todoId}/detail/{side}-files/{fileId} [delete]
func (c *TodoDetailController) RemoveFile(side planner.FileSide) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		a, ok := actorOf(ctx)
		if !ok {
			return
		}
		ref, err := c.DetailService.RemoveFile(ctx.Request.Context(), a, ctx.Param("todoId"), side, ctx.Param("fileId"))
		if err != nil {
			util.WriteError(ctx, err)
			return
		}
		util.Success(ctx, ref)
	}
}

// DownloadFile godoc
// @Summary 첨부 파일 내려받기
// @Tags 할 일 상세
// @Produce  octet-stream
// @Param   todoId path string true "할 일 ID"
// @Param   fileId path string true "파일 ID"
// @Success 200 {file} file
// @Router /api/todos/{todoId}/detail/files/{fileId} [get]
func (c *TodoDetailController) DownloadFile(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	ref, rc, err := c.DetailService.OpenFile(ctx.Request.Context(), a, ctx.Param("todoId"), ctx.Param("fileId"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	defer rc.Close()

	disposition := "attachment"
	if ref.Image {
		disposition = "inline"
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("%s; filename*=UTF-8''%s", disposition, url.PathEscape(ref.Name)))
	ctx.Header("Content-Type", ref.ContentType)
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, rc); err != nil {
		logger.Log.Warn("File download interrupted", zap.String("file", ref.ID), zap.Error(err))
	}
}
