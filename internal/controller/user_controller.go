package controller

import (
	"quizmaster_backend/internal/service"
	"quizmaster_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetProfile godoc
// @Summary 当前用户信息
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserProfile}
// @Failure 401 {object} util.Response "未认证"
// @Router /api/user/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	profile, err := c.UserService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// ListAnnouncements godoc
// @Summary 通知列表
// @Description 返回他人分享给当前用户的测验，最新的在前
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Announcement}
// @Router /api/user/announcements [get]
func (c *UserController) ListAnnouncements(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	announcements, err := c.UserService.ListAnnouncements(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, announcements)
}

// MarkAnnouncementRead godoc
// @Summary 标记通知为已读
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "通知ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "通知不存在"
// @Router /api/user/announcements/{id}/read [patch]
func (c *UserController) MarkAnnouncementRead(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.UserService.MarkAnnouncementRead(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id"), "read": true})
}

// MarkAllAnnouncementsRead godoc
// @Summary 全部标记为已读
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/user/announcements/read-all [patch]
func (c *UserController) MarkAllAnnouncementsRead(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.UserService.MarkAllAnnouncementsRead(ctx.Request.Context(), userID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"read": true})
}

// DeleteAnnouncement godoc
// @Summary 删除通知
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "通知ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "通知不存在"
// @Router /api/user/announcements/{id} [delete]
func (c *UserController) DeleteAnnouncement(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.UserService.DeleteAnnouncement(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id"), "deleted": true})
}

// ShareQuiz godoc
// @Summary 分享测验
// @Description 按用户名或邮箱把测验分享给其他用户
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Param body body service.ShareQuizRequest true "接收者"
// @Success 201 {object} util.Response{data=model.Announcement}
// @Failure 400 {object} util.Response "不能分享给自己"
// @Failure 404 {object} util.Response "测验或用户不存在"
// @Router /api/quiz/share/{id} [post]
func (c *UserController) ShareQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.ShareQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	announcement, err := c.UserService.ShareQuiz(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, announcement)
}
