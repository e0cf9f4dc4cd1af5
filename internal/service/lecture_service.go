package service

import (
	"aptitude_backend/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LectureStore interface {
	Create(ctx context.Context, l *model.Lecture) error
	List(ctx context.Context) ([]model.Lecture, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Lecture, error)
	Update(ctx context.Context, id primitive.ObjectID, p *model.LecturePatch) (*model.Lecture, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// LectureInput is the body of a lecture create or update; nil fields were not sent.
type LectureInput struct {
	Topic       *string `json:"topic" form:"topic"`
	Category    *string `json:"category" form:"category"`
	VideoURL    *string `json:"videoUrl" form:"videoUrl"`
	Description *string `json:"description" form:"description"`
	Duration    *string `json:"duration" form:"duration"`
}

type LectureService struct {
	Repo LectureStore
}

func NewLectureService(repo LectureStore) *LectureService {
	return &LectureService{Repo: repo}
}

func (s *LectureService) Create(ctx context.Context, in LectureInput) (*model.Lecture, error) {
	l := &model.Lecture{
		Topic:       deref(in.Topic),
		Category:    deref(in.Category),
		VideoURL:    deref(in.VideoURL),
		Description: deref(in.Description),
		Duration:    deref(in.Duration),
	}
	if err := validateRecord(l); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *LectureService) List(ctx context.Context) ([]model.Lecture, error) {
	lectures, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if lectures == nil {
		lectures = []model.Lecture{}
	}
	return lectures, nil
}

func (s *LectureService) GetByID(ctx context.Context, rawID string) (*model.Lecture, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

func (s *LectureService) Update(ctx context.Context, rawID string, in LectureInput) (*model.Lecture, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	p := &model.LecturePatch{}
	err = copyNonEmpty([]stringField{
		{"topic", in.Topic, &p.Topic},
		{"category", in.Category, &p.Category},
		{"videoUrl", in.VideoURL, &p.VideoURL},
		{"description", in.Description, &p.Description},
		{"duration", in.Duration, &p.Duration},
	})
	if err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, id, p)
}

func (s *LectureService) Delete(ctx context.Context, rawID string) error {
	id, err := model.ParseID(rawID)
	if err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
