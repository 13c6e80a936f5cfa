package controller

import (
	"net/http"

	"study_planner_backend/internal/config"
	"study_planner_backend/internal/service"
	"study_planner_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	Cfg         *config.Config
	IsRelease   bool // 운영 환경 여부 (쿠키 Secure 플래그)
}

func NewAuthController(authService *service.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{
		AuthService: authService,
		Cfg:         cfg,
		IsRelease:   cfg.Server.Mode == "release",
	}
}

// LoginRequest 로그인 요청
// swagger:model LoginRequest
type LoginRequest struct {
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session godoc
// @Summary 로그인 상태 확인
// @Description 세션 쿠키가 유효하면 사용자 정보를, 아니면 ok=false 를 돌려준다
// @Tags 인증
// @Produce  json
// @Success 200 {object} util.Response{data=service.SessionUser} "로그인 상태"
// @Router /api/auth/login [get]
func (c *AuthController) Session(ctx *gin.Context) {
	token, err := ctx.Cookie(c.Cfg.JWT.CookieName)
	if err != nil || token == "" {
		ctx.JSON(http.StatusOK, util.Response{OK: false, Error: "로그인되지 않음"})
		return
	}
	claims, err := util.ParseJWT(token, c.Cfg.JWT.Secret)
	if err != nil {
		ctx.JSON(http.StatusOK, util.Response{OK: false, Error: "로그인되지 않음"})
		return
	}

	user, err := c.AuthService.Session(claims)
	if err != nil {
		if util.StatusOf(err) == http.StatusInternalServerError {
			util.LogInternalError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, util.Response{OK: false, Error: err.Error()})
		return
	}
	util.Success(ctx, user)
}

// Login godoc
// @Summary 로그인
// @Description 아이디와 비밀번호로 로그인하고 세션 쿠키를 설정한다
// @Tags 인증
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "로그인 정보"
// @Success 200 {object} util.Response{data=service.SessionUser} "로그인 성공"
// @Failure 400 {object} util.Response "요청 형식 오류"
// @Failure 401 {object} util.Response "비밀번호 오류"
// @Failure 404 {object} util.Response "없는 아이디"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "loginId/password 필수")
		return
	}

	token, user, err := c.AuthService.Login(req.LoginID, req.Password)
	if err != nil {
		util.WriteError(ctx, err)
		return
	}

	// HttpOnly 세션 쿠키, 운영 환경에서는 Secure
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Cfg.JWT.CookieName, token, int(c.Cfg.JWT.ExpireTime.Seconds()), "/", "", c.IsRelease, true)
	util.Success(ctx, user)
}

// Logout godoc
// @Summary 로그아웃
// @Tags 인증
// @Produce  json
// @Success 200 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Cfg.JWT.CookieName, "", -1, "/", "", c.IsRelease, true)
	util.Success(ctx, nil)
}
