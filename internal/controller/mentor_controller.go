package controller

import (
	"study_planner_backend/internal/service"
	"study_planner_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MentorController 멘토 전용 화면
type MentorController struct {
	PlannerService *service.PlannerService
}

func NewMentorController(plannerService *service.PlannerService) *MentorController {
	return &MentorController{PlannerService: plannerService}
}

type AssignTodoRequest struct {
	Title      string `json:"title" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Subject    string `json:"subject"`
	MentorDesc string `json:"mentorDesc"`
}

type FeedbackRequest struct {
	Date  string `json:"date" binding:"required"`
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

type EditFeedbackRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// Mentees godoc
// @Summary 담당 멘티 목록
// @Tags 멘토
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.MenteeSummary}
// @Router /api/mentormentee/mentor/mentees [get]
func (c *MentorController) Mentees(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	list, err := c.PlannerService.Mentees(ctx.Request.Context(), a)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Overview godoc
// @Summary 멘티 할 일/피드백 현황
// @Description start, end 가 없으면 전체 기록을 최신순으로
// @Tags 멘토
// @Produce  json
// @Param   menteeId path string true "멘티 ID"
// @Param   start query string false "YYYY-MM-DD"
// @Param   end query string false "YYYY-MM-DD"
// @Success 200 {object} util.Response{data=service.MenteeOverview}
// @Failure 403 {object} util.Response "담당 멘티가 아님"
// @Router /api/mentormentee/mentor/mentees/{menteeId}/overview [get]
func (c *MentorController) Overview(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	ov, err := c.PlannerService.MenteeOverview(ctx.Request.Context(), a, ctx.Param("menteeId"), ctx.Query("start"), ctx.Query("end"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, ov)
}

// AssignTodo godoc
// @Summary 멘티에게 할 일 배정
// @Tags 멘토
// @Accept  json
// @Produce  json
// @Param   menteeId path string true "멘티 ID"
// @Param   body body AssignTodoRequest true "배정할 할 일"
// @Success 201 {object} util.Response{data=planner.AssignedTask}
// @Router /api/mentormentee/mentor/mentees/{menteeId}/todos [post]
func (c *MentorController) AssignTodo(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req AssignTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "title/date 필수")
		return
	}
	at, err := c.PlannerService.AssignTask(ctx.Request.Context(), a, ctx.Param("menteeId"), req.Date, req.Title, req.Subject, req.MentorDesc)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Created(ctx, at)
}

// DeleteTodo godoc
// @Summary 멘티 할 일 삭제
// @Description 멘토가 배정한 할 일은 409
// @Tags 멘토
// @Produce  json
// @Param   menteeId path string true "멘티 ID"
// @Param   date path string true "YYYY-MM-DD"
// @Param   todoId path string true "할 일 ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "삭제 불가"
// @Router /api/mentormentee/mentor/mentees/{menteeId}/days/{date}/todos/{todoId} [delete]
func (c *MentorController) DeleteTodo(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	err := c.PlannerService.DeleteMenteeTask(ctx.Request.Context(), a, ctx.Param("menteeId"), ctx.Param("date"), ctx.Param("todoId"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddFeedback godoc
// @Summary 피드백 작성
// @Tags 멘토
// @Accept  json
// @Produce  json
// @Param   menteeId path string true "멘티 ID"
// @Param   body body FeedbackRequest true "피드백"
// @Success 201 {object} util.Response{data=planner.Feedback}
// @Router /api/mentormentee/mentor/mentees/{menteeId}/feedback [post]
func (c *MentorController) AddFeedback(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "date/title 필수")
		return
	}
	f, err := c.PlannerService.AddFeedback(ctx.Request.Context(), a, ctx.Param("menteeId"), req.Date, req.Title, req.Body)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Created(ctx, f)
}

// EditFeedback godoc
// @Summary 피드백 수정
// @Tags 멘토
// @Accept  json
// @Produce  json
// @Param   feedbackId path string true "피드백 ID"
// @Param   body body EditFeedbackRequest true "피드백"
// @Success 200 {object} util.Response{data=planner.Feedback}
// @Router /api/mentormentee/mentor/feedback/{feedbackId} [patch]
func (c *MentorController) EditFeedback(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req EditFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "title 필수")
		return
	}
	f, err := c.PlannerService.EditFeedback(ctx.Request.Context(), a, ctx.Param("feedbackId"), req.Title, req.Body)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, f)
}

// DeleteFeedback godoc
// @Summary 피드백 삭제
// @Tags 멘토
// @Produce  json
// @Param   feedbackId path string true "피드백 ID"
// @Success 200 {object} util.Response
// @Router /api/mentormentee/mentor/feedback/{feedbackId} [delete]
func (c *MentorController) DeleteFeedback(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	if err := c.PlannerService.DeleteFeedback(ctx.Request.Context(), a, ctx.Param("feedbackId")); err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Assignments godoc
// @Summary 내가 배정한 할 일 기록
// @Tags 멘토
// @Produce  json
// @Success 200 {object} util.Response{data=[]planner.AssignedTask}
// @Router /api/mentormentee/mentor/assignments [get]
func (c *MentorController) Assignments(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	list, err := c.PlannerService.Assignments(ctx.Request.Context(), a)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
