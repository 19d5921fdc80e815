package controller

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"quizmaster_backend/internal/service"
	"quizmaster_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// maxGenerationFiles 单次生成允许的附件数量
const maxGenerationFiles = 10

type GenerationController struct {
	GenerationService *service.GenerationService
	MaxUploadBytes    int64
}

func NewGenerationController(generationService *service.GenerationService, maxUploadMB int) *GenerationController {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &GenerationController{
		GenerationService: generationService,
		MaxUploadBytes:    int64(maxUploadMB) << 20,
	}
}

// GenerateQuiz godoc
// @Summary AI 生成测验草稿
// @Description 根据文本、图片或 PDF 生成测验草稿，草稿不会保存，编辑后通过创建测验接口提交
// @Tags 测验
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param text formData string false "参考文本"
// @Param numQuestions formData int false "题目数量" default(10)
// @Param difficulty formData string false "难度" Enums(Easy, Medium, Hard)
// @Param files formData file false "图片或 PDF 附件"
// @Success 200 {object} util.Response{data=service.CreateQuizRequest}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 502 {object} util.Response "生成失败"
// @Router /api/quiz/generate [post]
func (c *GenerationController) GenerateQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	// 1. 限制整个请求体大小
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.MaxUploadBytes)

	var req service.GenerateQuizRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 2. 读取附件，类型按内容识别
	if form, err := ctx.MultipartForm(); err == nil && form != nil {
		headers := form.File["files"]
		if len(headers) == 0 {
			headers = form.File["files[]"]
		}
		if len(headers) > maxGenerationFiles {
			util.HandleError(ctx, util.NewValidationError("files", fmt.Sprintf("at most %d files are allowed", maxGenerationFiles)))
			return
		}
		for i, fh := range headers {
			file, err := c.readSourceFile(fh)
			if err != nil {
				util.HandleError(ctx, util.NewValidationError(fmt.Sprintf("files[%d]", i), err.Error()))
				return
			}
			req.Files = append(req.Files, *file)
		}
	}

	// 3. 调用模型生成草稿
	draft, err := c.GenerationService.Generate(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

func (c *GenerationController) readSourceFile(fh *multipart.FileHeader) (*service.SourceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mimeType, err := util.ValidateMimeType(f, util.AllowedGenerationTypes)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	data, err := util.ReadLimited(f, c.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	return &service.SourceFile{Name: fh.Filename, MIMEType: mimeType, Data: data}, nil
}
