package repository

import (
	"aptitude_backend/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestionRepository struct {
	docs documents[model.Question]
}

func NewQuestionRepository(store Store) *QuestionRepository {
	return &QuestionRepository{docs: documents[model.Question]{store: store, name: model.Question{}.CollectionName()}}
}

// Create stamps id and timestamps on q and inserts it.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	q.Touch(model.Now())
	return r.docs.insert(ctx, q)
}

func (r *QuestionRepository) List(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
	return r.docs.find(ctx, questionFilter(f))
}

func (r *QuestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Question, error) {
	return r.docs.findByID(ctx, id)
}

func (r *QuestionRepository) Update(ctx context.Context, id primitive.ObjectID, p *model.QuestionPatch) (*model.Question, error) {
	return r.docs.update(ctx, id, questionSetDoc(p, model.Now()))
}

func (r *QuestionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.docs.delete(ctx, id)
}

func questionFilter(f model.QuestionFilter) bson.M {
	filter := bson.M{}
	if f.Topic != "" {
		filter["topic"] = f.Topic
	}
	if f.Company != "" {
		filter["company"] = f.Company
	}
	return filter
}

// questionSetDoc builds the $set document for a sparse update.
func questionSetDoc(p *model.QuestionPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.QuestionText != nil {
		set["questionText"] = *p.QuestionText
	}
	if p.Options != nil {
		set["options"] = p.Options
	}
	if p.CorrectAnswer != nil {
		set["correctAnswer"] = *p.CorrectAnswer
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Difficulty != nil {
		set["difficulty"] = string(*p.Difficulty)
	}
	if p.Topic != nil {
		set["topic"] = *p.Topic
	}
	if p.Solution != nil {
		set["solution"] = *p.Solution
	}
	if p.ImageURL != nil {
		set["imageUrl"] = *p.ImageURL
	}
	if p.Company != nil {
		set["company"] = *p.Company
	}
	return set
}
