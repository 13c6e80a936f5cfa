package controller

import (
	"time"

	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/service"
	"study_planner_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PlannerController 멘티 플래너 화면과 화면 상태
type PlannerController struct {
	PlannerService *service.PlannerService
}

func NewPlannerController(plannerService *service.PlannerService) *PlannerController {
	return &PlannerController{PlannerService: plannerService}
}

type AddTodoRequest struct {
	Title   string `json:"title" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Subject string `json:"subject"`
}

// StudyRequest hours 가 있으면 시/분, 없으면 minutes 를 총 분으로 쓴다
type StudyRequest struct {
	Subject string `json:"subject" binding:"required"`
	Minutes int    `json:"minutes"`
	Hours   *int   `json:"hours"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

type RenameSubjectRequest struct {
	Old  string `json:"old" binding:"required"`
	New  string `json:"new" binding:"required"`
	Date string `json:"date"`
}

type ReminderRequest struct {
	Title string `json:"title" binding:"required"`
	Date  string `json:"date" binding:"required"`
	// RFC3339 또는 "15:04"
	Time string `json:"time"`
}

type ViewUpdateRequest struct {
	Date     string `json:"date"`
	MenteeID string `json:"menteeId"`
}

type ViewMoveRequest struct {
	Days   int `json:"days"`
	Months int `json:"months"`
}

type ViewSwitchRequest struct {
	View string `json:"view" binding:"required"`
}

// Dashboard godoc
// @Summary 멘티 대시보드
// @Description 오늘(또는 date)의 할 일, 공부 시간, 주간 요약
// @Tags 멘티
// @Produce  json
// @Param   date query string false "YYYY-MM-DD"
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Failure 401 {object} util.Response
// @Router /api/mentormentee/dashboard [get]
func (c *PlannerController) Dashboard(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	d, err := c.PlannerService.Dashboard(ctx.Request.Context(), a, ctx.Query("date"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// AddTodo godoc
// @Summary 할 일 추가
// @Tags 멘티
// @Accept  json
// @Produce  json
// @Param   body body AddTodoRequest true "할 일"
// @Success 201 {object} util.Response{data=service.Todo}
// @Failure 400 {object} util.Response "title/date 필수"
// @Router /api/mentormentee/todos [post]
func (c *PlannerController) AddTodo(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req AddTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "title/date 필수")
		return
	}
	todo, err := c.PlannerService.AddTask(ctx.Request.Context(), a, req.Date, req.Title, req.Subject)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Created(ctx, todo)
}

// ToggleTodo godoc
// @Summary 할 일 완료 토글
// @Tags 멘티
// @Produce  json
// @Param   date path string true "YYYY-MM-DD"
// @Param   todoId path string true "할 일 ID"
// @Success 200 {object} util.Response{data=service.Todo}
// @Failure 404 {object} util.Response
// @Router /api/mentormentee/days/{date}/todos/{todoId}/toggle [patch]
func (c *PlannerController) ToggleTodo(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	todo, err := c.PlannerService.ToggleTask(ctx.Request.Context(), a, ctx.Param("date"), ctx.Param("todoId"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, todo)
}

// DeleteTodo godoc
// @Summary 할 일 삭제
// @Description 멘토가 배정한 할 일은 삭제할 수 없다
// @Tags 멘티
// @Produce  json
// @Param   date path string true "YYYY-MM-DD"
// @Param   todoId path string true "할 일 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "멘토 배정 할 일"
// @Router /api/mentormentee/days/{date}/todos/{todoId} [delete]
func (c *PlannerController) DeleteTodo(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	if err := c.PlannerService.DeleteTask(ctx.Request.Context(), a, ctx.Param("date"), ctx.Param("todoId")); err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Day godoc
// @Summary 하루 플래너
// @Tags 멘티
// @Produce  json
// @Param   date path string true "YYYY-MM-DD"
// @Success 200 {object} util.Response{data=planner.DayView}
// @Router /api/mentormentee/days/{date} [get]
func (c *PlannerController) Day(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	day, err := c.PlannerService.Day(ctx.Request.Context(), a, a.UserID, ctx.Param("date"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, day)
}

// SetStudy godoc
// @Summary 과목별 공부 시간 입력
// @Tags 멘티
// @Accept  json
// @Produce  json
// @Param   date path string true "YYYY-MM-DD"
// @Param   body body StudyRequest true "공부 시간"
// @Success 200 {object} util.Response{data=object}
// @Router /api/mentormentee/days/{date}/study [put]
func (c *PlannerController) SetStudy(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req StudyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "subject 필수")
		return
	}
	total, err := c.PlannerService.SetStudy(ctx.Request.Context(), a, ctx.Param("date"), req.Subject, req.Minutes, req.Hours)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"subject": req.Subject, "minutes": total})
}

// SetComment godoc
// @Summary 하루 코멘트 저장
// @Description 빈 문자열이면 삭제
// @Tags 멘티
// @Accept  json
// @Produce  json
// @Param   date path string true "YYYY-MM-DD"
// @Param   body body CommentRequest true "코멘트"
// @Success 200 {object} util.Response
// @Router /api/mentormentee/days/{date}/comment [put]
func (c *PlannerController) SetComment(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.PlannerService.SetComment(ctx.Request.Context(), a, ctx.Param("date"), req.Comment); err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"comment": req.Comment})
}

// Subjects godoc
// @Summary 과목 목록
// @Tags 멘티
// @Produce  json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/mentormentee/subjects [get]
func (c *PlannerController) Subjects(ctx *gin.Context) {
	util.Success(ctx, c.PlannerService.Subjects())
}

// AddSubject godoc
// @Summary 과목 추가
// @Description "새 과목", "새 과목2" 순으로 이름을 붙인다
// @Tags 멘티
// @Produce  json
// @Success 201 {object} util.Response{data=object}
// @Router /api/mentormentee/subjects [post]
func (c *PlannerController) AddSubject(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	name, err := c.PlannerService.AddSubject(ctx.Request.Context(), a)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"name": name, "subjects": c.PlannerService.Subjects()})
}

// RenameSubject godoc
// @Summary 과목 이름 변경
// @Description 공부 시간은 date 의 기록만 옮겨진다
// @Tags 멘티
// @Accept  json
// @Produce  json
// @Param   body body RenameSubjectRequest true "이름 변경"
// @Success 200 {object} util.Response{data=object}
// @Router /api/mentormentee/subjects [patch]
func (c *PlannerController) RenameSubject(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req RenameSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "old/new 필수")
		return
	}
	changed, err := c.PlannerService.RenameSubject(ctx.Request.Context(), a, req.Date, req.Old, req.New)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"changed": changed, "subjects": c.PlannerService.Subjects()})
}

// DeleteSubject godoc
// @Summary 과목 삭제
// @Tags 멘티
// @Produce  json
// @Param   name path string true "과목 이름"
// @Param   date query string false "공부 시간을 지울 날짜"
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/mentormentee/subjects/{name} [delete]
func (c *PlannerController) DeleteSubject(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	if err := c.PlannerService.DeleteSubject(ctx.Request.Context(), a, ctx.Query("date"), ctx.Param("name")); err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, c.PlannerService.Subjects())
}

// Week godoc
// @Summary 주간 할 일과 피드백
// @Tags 멘티
// @Produce  json
// @Param   start query string false "주 안의 아무 날짜"
// @Success 200 {object} util.Response{data=service.WeekPage}
// @Router /api/mentormentee/week [get]
func (c *PlannerController) Week(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	week, err := c.PlannerService.Week(ctx.Request.Context(), a, a.UserID, ctx.Query("start"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, week)
}

// Calendar godoc
// @Summary 월간 달력
// @Tags 멘티
// @Produce  json
// @Param   date query string false "달 안의 아무 날짜"
// @Success 200 {object} util.Response{data=service.CalendarPage}
// @Router /api/mentormentee/calendar [get]
func (c *PlannerController) Calendar(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	cal, err := c.PlannerService.Calendar(ctx.Request.Context(), a, a.UserID, ctx.Query("date"))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, cal)
}

// Reminders godoc
// @Summary 알림 목록과 오늘/내일 요약
// @Tags 멘티
// @Produce  json
// @Success 200 {object} util.Response{data=service.RemindersPage}
// @Router /api/mentormentee/reminders [get]
func (c *PlannerController) Reminders(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	page, err := c.PlannerService.Reminders(ctx.Request.Context(), a)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// AddReminder godoc
// @Summary 알림 추가
// @Tags 멘티
// @Accept  json
// @Produce  json
// @Param   body body ReminderRequest true "알림"
// @Success 201 {object} util.Response{data=planner.Reminder}
// @Router /api/mentormentee/reminders [post]
func (c *PlannerController) AddReminder(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req ReminderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "title/date 필수")
		return
	}
	at, err := reminderTime(req.Date, req.Time)
	if err != nil {
		util.BadRequest(ctx, "time 형식 오류")
		return
	}
	r, err := c.PlannerService.AddReminder(ctx.Request.Context(), a, req.Title, req.Date, at)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Created(ctx, r)
}

func reminderTime(date, clock string) (time.Time, error) {
	if clock == "" {
		return time.ParseInLocation(util.DateFormat, date, time.Local)
	}
	if t, err := time.Parse(time.RFC3339, clock); err == nil {
		return t, nil
	}
	return time.ParseInLocation(util.DateFormat+" "+util.ClockFormat, date+" "+clock, time.Local)
}

// DeleteReminder godoc
// @Summary 알림 삭제
// @Tags 멘티
// @Produce  json
// @Param   id path string true "알림 ID"
// @Success 200 {object} util.Response
// @Router /api/mentormentee/reminders/{id} [delete]
func (c *PlannerController) DeleteReminder(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	if err := c.PlannerService.DeleteReminder(ctx.Request.Context(), a, ctx.Param("id")); err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// MarkFeedbackSeen godoc
// @Summary 피드백 읽음 처리
// @Tags 멘티
// @Produce  json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/mentormentee/feedback/seen [post]
func (c *PlannerController) MarkFeedbackSeen(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	ids, err := c.PlannerService.MarkFeedbackSeen(ctx.Request.Context(), a)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, ids)
}

// GetView godoc
// @Summary 화면 상태 조회
// @Tags 화면
// @Produce  json
// @Success 200 {object} util.Response{data=service.ViewPage}
// @Router /api/mentormentee/view [get]
func (c *PlannerController) GetView(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	page, err := c.PlannerService.GetView(ctx.Request.Context(), a)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// UpdateView godoc
// @Summary 날짜/멘티 선택
// @Tags 화면
// @Accept  json
// @Produce  json
// @Param   body body ViewUpdateRequest true "선택"
// @Success 200 {object} util.Response{data=service.ViewPage}
// @Router /api/mentormentee/view [put]
func (c *PlannerController) UpdateView(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req ViewUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	page, err := c.PlannerService.UpdateView(ctx.Request.Context(), a, req.Date, req.MenteeID)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// MoveView godoc
// @Summary 날짜 이동
// @Description months 를 먼저 적용한 뒤 days 를 적용한다
// @Tags 화면
// @Accept  json
// @Produce  json
// @Param   body body ViewMoveRequest true "이동량"
// @Success 200 {object} util.Response{data=service.ViewPage}
// @Router /api/mentormentee/view/move [post]
func (c *PlannerController) MoveView(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req ViewMoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	page, err := c.PlannerService.MoveView(ctx.Request.Context(), a, req.Days, req.Months)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// SwitchView godoc
// @Summary 멘티/멘토 화면 전환
// @Tags 화면
// @Accept  json
// @Produce  json
// @Param   body body ViewSwitchRequest true "mentee 또는 mentor"
// @Success 200 {object} util.Response{data=service.ViewPage}
// @Router /api/mentormentee/view/switch [post]
func (c *PlannerController) SwitchView(ctx *gin.Context) {
	a, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req ViewSwitchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "view 필수")
		return
	}
	page, err := c.PlannerService.SwitchView(ctx.Request.Context(), a, planner.View(req.View))
	if err != nil {
		util.WriteError(ctx, err)
		return
	}
	util.Success(ctx, page)
}
