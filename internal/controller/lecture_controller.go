package controller

import (
	"aptitude_backend/internal/service"
	"aptitude_backend/internal/util"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LectureController struct {
	Service *service.LectureService
}

func NewLectureController(s *service.LectureService) *LectureController {
	return &LectureController{Service: s}
}

// @Summary List lectures
// @Tags learn
// @Produce json
// @Success 200 {array} model.Lecture
// @Router /api/learn [get]
func (c *LectureController) ListLectures(ctx *gin.Context) {
	lectures, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		util.Fail(ctx, err, "Lecture")
		return
	}
	ctx.JSON(http.StatusOK, lectures)
}

// @Summary Get a lecture
// @Tags learn
// @Produce json
// @Param id path string true "lecture id"
// @Success 200 {object} model.Lecture
// @Router /api/learn/{id} [get]
func (c *LectureController) GetLecture(ctx *gin.Context) {
	l, err := c.Service.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.Fail(ctx, err, "Lecture")
		return
	}
	ctx.JSON(http.StatusOK, l)
}

// @Summary Add a lecture
// @Tags learn
// @Accept json
// @Produce json
// @Success 201 {object} model.Lecture
// @Router /api/learn [post]
func (c *LectureController) CreateLecture(ctx *gin.Context) {
	in, err := bindLecture(ctx)
	if err != nil {
		util.Fail(ctx, err, "Lecture")
		return
	}

	l, err := c.Service.Create(ctx.Request.Context(), in)
	if err != nil {
		util.Fail(ctx, err, "Lecture")
		return
	}
	ctx.JSON(http.StatusCreated, l)
}

// @Summary Update a lecture
// @Tags learn
// @Accept json
// @Produce json
// @Param id path string true "lecture id"
// @Success 200 {object} model.Lecture
// @Router /api/learn/{id} [put]
func (c *LectureController) UpdateLecture(ctx *gin.Context) {
	in, err := bindLecture(ctx)
	if err != nil {
		util.Fail(ctx, err, "Lecture")
		return
	}

	l, err := c.Service.Update(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		util.Fail(ctx, err, "Lecture")
		return
	}
	ctx.JSON(http.StatusOK, l)
}

// @Summary Delete a lecture
// @Tags learn
// @Produce json
// @Param id path string true "lecture id"
// @Success 200 {object} map[string]string
// @Router /api/learn/{id} [delete]
func (c *LectureController) DeleteLecture(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.Fail(ctx, err, "Lecture")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Lecture deleted successfully"})
}

func bindLecture(ctx *gin.Context) (service.LectureInput, error) {
	var in service.LectureInput
	if err := ctx.ShouldBind(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, util.NewValidationError("", "malformed request body: "+err.Error())
	}
	return in, nil
}
