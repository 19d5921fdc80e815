package controller

import (
	"net/http"
	"quizmaster_backend/internal/service"
	"quizmaster_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
	IsRelease   bool // 是否为生产环境
}

func NewAuthController(authService *service.AuthService, userService *service.UserService, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
		IsRelease:   isRelease,
	}
}

// currentUserID 读取认证中间件写入的用户 ID
func currentUserID(ctx *gin.Context) (string, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return "", false
	}
	return claims.UserID, true
}

// Register godoc
// @Summary 注册新用户
// @Description 使用用户名、邮箱和密码注册
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=service.UserProfile} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱或用户名已被占用"
// @Router /api/user/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, service.NewUserProfile(user))
}

// Login godoc
// @Summary 用户登录
// @Description 使用邮箱或用户名登录，令牌写入 HTTP-only Cookie 并在响应中返回
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "登录凭证"
// @Success 200 {object} util.Response{data=object} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "凭证无效"
// @Router /api/user/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	maxAge := int(c.AuthService.Cfg.JWT.ExpireTime.Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(util.SessionCookieName, token, maxAge, "/", "", c.IsRelease, true)

	util.Success(ctx, gin.H{
		"token": token,
		"user":  service.NewUserProfile(user),
	})
}

// Logout godoc
// @Summary 注销
// @Description 吊销当前会话令牌并清除 Cookie
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "注销成功"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/user/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.AuthService.Logout(ctx.Request.Context(), claims); err != nil {
		util.HandleError(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(util.SessionCookieName, "", -1, "/", "", c.IsRelease, true)
	util.Success(ctx, gin.H{"loggedOut": true})
}
