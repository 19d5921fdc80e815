package controller

import (
	"quizmaster_backend/internal/service"
	"quizmaster_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService    *service.QuizService
	StorageService *service.StorageService
}

func NewQuizController(quizService *service.QuizService, storageService *service.StorageService) *QuizController {
	return &QuizController{
		QuizService:    quizService,
		StorageService: storageService,
	}
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 创建测验并记录到创建者的测验列表，题目答案必须是选项之一
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param body body service.CreateQuizRequest true "测验内容"
// @Success 200 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/quiz [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"id": quiz.ID})
}

// GetQuiz godoc
// @Summary 测验详情
// @Description 创建者可看到答案，其他用户只能查看公开测验且不包含答案
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizPublicView}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	view, err := c.QuizService.GetQuiz(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ListPublicQuizzes godoc
// @Summary 公开测验列表
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/quiz/public/get [get]
func (c *QuizController) ListPublicQuizzes(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx)

	quizzes, total, err := c.QuizService.ListPublicQuizzes(ctx.Request.Context(), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  quizzes,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// ListMyQuizzes godoc
// @Summary 我创建的测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.QuizOwnerView}
// @Router /api/quiz/user/created [get]
func (c *QuizController) ListMyQuizzes(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	quizzes, err := c.QuizService.ListMyQuizzes(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// UpdateQuiz godoc
// @Summary 更新测验
// @Description 只有创建者可以更新，未提供的字段保持不变
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Param body body service.UpdateQuizRequest true "需要更新的字段"
// @Success 200 {object} util.Response{data=service.QuizOwnerView}
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id} [patch]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.UpdateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.NewQuizOwnerView(quiz))
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.QuizService.DeleteQuiz(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id"), "deleted": true})
}

// UploadQuestionImage godoc
// @Summary 上传题目配图
// @Description 图片会被压缩为 JPEG 后保存，返回可访问的地址
// @Tags 测验
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param file formData file true "图片文件"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /api/quiz/upload/image [post]
func (c *QuizController) UploadQuestionImage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(ctx, "File is unreadable")
		return
	}
	defer file.Close()

	url, err := c.StorageService.UploadQuestionImage(ctx.Request.Context(), userID, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"url": url})
}
