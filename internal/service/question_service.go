package service

import (
	"aptitude_backend/internal/model"
	"aptitude_backend/internal/util"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	List(ctx context.Context, f model.QuestionFilter) ([]model.Question, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Question, error)
	Update(ctx context.Context, id primitive.ObjectID, p *model.QuestionPatch) (*model.Question, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// QuestionInput is a create or update command decoded from a request.
// Nil fields were not sent.
type QuestionInput struct {
	QuestionText  *string          `json:"questionText"`
	Options       model.RawOptions `json:"options"`
	CorrectAnswer *string          `json:"correctAnswer"`
	Category      *string          `json:"category"`
	Difficulty    *string          `json:"difficulty"`
	Topic         *string          `json:"topic"`
	Solution      *string          `json:"solution"`
	ImageURL      *string          `json:"imageUrl"`
	Company       *string          `json:"company"`
}

type QuestionService struct {
	Repo QuestionStore
}

func NewQuestionService(repo QuestionStore) *QuestionService {
	return &QuestionService{Repo: repo}
}

func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (*model.Question, error) {
	q := &model.Question{
		QuestionText:  deref(in.QuestionText),
		CorrectAnswer: deref(in.CorrectAnswer),
		Category:      deref(in.Category),
		Difficulty:    model.Medium,
		Topic:         deref(in.Topic),
		Solution:      deref(in.Solution),
		Company:       deref(in.Company),
	}
	if d, ok := model.ParseDifficulty(deref(in.Difficulty)); ok {
		q.Difficulty = d
	}
	if options, ok := in.Options.Normalize(); ok {
		q.Options = options
	}
	if in.ImageURL != nil && *in.ImageURL != "" {
		q.ImageURL = in.ImageURL
	}

	if err := validateRecord(q); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) List(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
	questions, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

func (s *QuestionService) GetByID(ctx context.Context, rawID string) (*model.Question, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

// Update applies only the fields present in in.
func (s *QuestionService) Update(ctx context.Context, rawID string, in QuestionInput) (*model.Question, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	patch, err := in.patch()
	if err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, id, patch)
}

func (s *QuestionService) Delete(ctx context.Context, rawID string) error {
	id, err := model.ParseID(rawID)
	if err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (in QuestionInput) patch() (*model.QuestionPatch, error) {
	p := &model.QuestionPatch{
		ImageURL: in.ImageURL,
		Company:  in.Company,
	}

	err := copyNonEmpty([]stringField{
		{"questionText", in.QuestionText, &p.QuestionText},
		{"correctAnswer", in.CorrectAnswer, &p.CorrectAnswer},
		{"category", in.Category, &p.Category},
		{"topic", in.Topic, &p.Topic},
		{"solution", in.Solution, &p.Solution},
	})
	if err != nil {
		return nil, err
	}

	if in.Difficulty != nil {
		d, ok := model.ParseDifficulty(*in.Difficulty)
		if !ok {
			return nil, util.NewValidationError("difficulty", "must be one of Easy Medium Hard")
		}
		p.Difficulty = &d
	}

	if options, ok := in.Options.Normalize(); ok {
		if err := validateOptions(options); err != nil {
			return nil, err
		}
		p.Options = options
	}
	return p, nil
}
