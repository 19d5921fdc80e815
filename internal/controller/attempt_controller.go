package controller

import (
	"errors"
	"io"
	"quizmaster_backend/internal/service"
	"quizmaster_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// CreateAttempt godoc
// @Summary 开始作答
// @Description 为公开测验创建作答记录，返回不含答案的题目
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "测验不存在或未公开"
// @Router /api/quiz/attempt/create/{id} [post]
func (c *AttemptController) CreateAttempt(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	attempt, err := c.AttemptService.CreateAttempt(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"createdAttempt": attempt})
}

// SaveAnswer godoc
// @Summary 保存单题答案
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "作答ID"
// @Param body body service.SaveAnswerRequest true "题号与答案"
// @Success 200 {object} util.Response{data=service.AttemptQuestionView}
// @Failure 400 {object} util.Response "答案不在选项中"
// @Failure 409 {object} util.Response "作答已完成"
// @Router /api/quiz/attempt/save/question/{id} [patch]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.AttemptService.SaveAnswer(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// FinalizeAttempt godoc
// @Summary 完成作答并评分
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "作答ID"
// @Param body body service.FinalizeAttemptRequest true "用时"
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "作答已完成"
// @Router /api/quiz/attempt/save/{id} [patch]
func (c *AttemptController) FinalizeAttempt(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	// 请求体可以为空
	var req service.FinalizeAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	total, err := c.AttemptService.FinalizeAttempt(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"totalMarks": total})
}

// SubmitQuiz godoc
// @Summary 一次性提交测验
// @Description answers 按题目顺序排列，立即评分并返回结果
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Param body body service.SubmitQuizRequest true "全部答案"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response "测验不存在或未公开"
// @Router /api/quiz/attempt/{id} [post]
func (c *AttemptController) SubmitQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.SubmitQuiz(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetPerformance godoc
// @Summary 作答成绩
// @Description 作答者或测验创建者可查看，包含正确答案与得分
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "作答ID"
// @Success 200 {object} util.Response{data=service.AttemptReview}
// @Failure 409 {object} util.Response "作答尚未完成"
// @Router /api/quiz/attempt/performance/{id} [get]
func (c *AttemptController) GetPerformance(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	review, err := c.AttemptService.GetPerformance(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// GetAttempt godoc
// @Summary 作答详情
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "作答ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 404 {object} util.Response "作答不存在"
// @Router /api/quiz/attempt/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	attempt, err := c.AttemptService.GetAttempt(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// ListMyAttempts godoc
// @Summary 我的作答记录
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.AttemptSummary}
// @Router /api/quiz/attempt/user/all [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	attempts, err := c.AttemptService.ListMyAttempts(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
