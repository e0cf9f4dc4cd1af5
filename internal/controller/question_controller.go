package controller

import (
	"aptitude_backend/internal/model"
	"aptitude_backend/internal/service"
	"aptitude_backend/internal/util"
	"aptitude_backend/pkg/logger"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const graphImageField = "graphImage"

// ImageStore keeps uploaded question images.
type ImageStore interface {
	SaveImage(ctx context.Context, field string, fh *multipart.FileHeader) (*service.StoredAsset, error)
	Delete(ctx context.Context, key string) error
}

type QuestionController struct {
	Service *service.QuestionService
	Images  ImageStore
}

func NewQuestionController(s *service.QuestionService, images ImageStore) *QuestionController {
	return &QuestionController{Service: s, Images: images}
}

// @Summary List questions
// @Tags questions
// @Produce json
// @Param topic query string false "exact topic"
// @Param company query string false "exact company"
// @Success 200 {array} model.Question
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	filter := model.QuestionFilter{
		Topic:   ctx.Query("topic"),
		Company: ctx.Query("company"),
	}
	questions, err := c.Service.List(ctx.Request.Context(), filter)
	if err != nil {
		util.Fail(ctx, err, "Question")
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// @Summary Get a question
// @Tags questions
// @Produce json
// @Param id path string true "question id"
// @Success 200 {object} model.Question
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	q, err := c.Service.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.Fail(ctx, err, "Question")
		return
	}
	ctx.JSON(http.StatusOK, q)
}

// @Summary Add a question
// @Description Accepts JSON, urlencoded or multipart bodies; a graphImage file overrides imageUrl.
// @Tags questions
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /api/questions/add [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	in, asset, err := c.bind(ctx)
	if err != nil {
		util.Fail(ctx, err, "Question")
		return
	}

	q, err := c.Service.Create(ctx.Request.Context(), in)
	if err != nil {
		c.discard(ctx, asset)
		util.Fail(ctx, err, "Question")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Question Added Successfully",
		"newQuestion": q,
	})
}

// @Summary Update a question
// @Tags questions
// @Accept json,mpfd
// @Produce json
// @Param id path string true "question id"
// @Success 200 {object} map[string]interface{}
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	in, asset, err := c.bind(ctx)
	if err != nil {
		util.Fail(ctx, err, "Question")
		return
	}

	updated, err := c.Service.Update(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		c.discard(ctx, asset)
		util.Fail(ctx, err, "Question")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Question Updated",
		"updated": updated,
	})
}

// @Summary Delete a question
// @Tags questions
// @Produce json
// @Param id path string true "question id"
// @Success 200 {object} map[string]interface{}
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.Fail(ctx, err, "Question")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Question deleted successfully",
	})
}

// bind decodes the request body and stores an attached graphImage. The stored
// image URL replaces any imageUrl the client sent.
func (c *QuestionController) bind(ctx *gin.Context) (service.QuestionInput, *service.StoredAsset, error) {
	var in service.QuestionInput

	switch ctx.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		in = formInput(ctx)
		fh, err := ctx.FormFile(graphImageField)
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, nil
		}
		if err != nil {
			return in, nil, util.NewValidationError(graphImageField, "could not be read")
		}
		asset, err := c.Images.SaveImage(ctx.Request.Context(), graphImageField, fh)
		if err != nil {
			return in, nil, err
		}
		in.ImageURL = &asset.URL
		return in, asset, nil

	case gin.MIMEPOSTForm:
		return formInput(ctx), nil, nil
	}

	if err := ctx.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		if !util.IsValidation(err) {
			err = util.NewValidationError("", "malformed request body: "+err.Error())
		}
		return in, nil, err
	}
	return in, nil, nil
}

// discard removes an image uploaded for a write that did not happen.
func (c *QuestionController) discard(ctx *gin.Context, asset *service.StoredAsset) {
	if asset == nil {
		return
	}
	if err := c.Images.Delete(context.WithoutCancel(ctx.Request.Context()), asset.Key); err != nil {
		logger.Log.Warn("failed to remove orphaned upload", zap.String("key", asset.Key), zap.Error(err))
	}
}

// formInput reads question fields from a urlencoded or multipart form. Repeated
// options keys arrive as a list, a single one as a string.
func formInput(ctx *gin.Context) service.QuestionInput {
	in := service.QuestionInput{
		Options: model.OptionsFromForm(ctx.PostFormArray("options")),
	}

	fields := []struct {
		key string
		dst **string
	}{
		{"questionText", &in.QuestionText},
		{"correctAnswer", &in.CorrectAnswer},
		{"category", &in.Category},
		{"difficulty", &in.Difficulty},
		{"topic", &in.Topic},
		{"solution", &in.Solution},
		{"imageUrl", &in.ImageURL},
		{"company", &in.Company},
	}
	for _, f := range fields {
		if v, ok := ctx.GetPostForm(f.key); ok {
			*f.dst = &v
		}
	}
	return in
}
