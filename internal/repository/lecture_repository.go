package repository

import (
	"aptitude_backend/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LectureRepository struct {
	docs documents[model.Lecture]
}

func NewLectureRepository(store Store) *LectureRepository {
	return &LectureRepository{docs: documents[model.Lecture]{store: store, name: model.Lecture{}.CollectionName()}}
}

// Create inserts l; a topic already taken fails with util.ErrDuplicate.
func (r *LectureRepository) Create(ctx context.Context, l *model.Lecture) error {
	l.Touch(model.Now())
	return r.docs.insert(ctx, l)
}

func (r *LectureRepository) List(ctx context.Context) ([]model.Lecture, error) {
	return r.docs.find(ctx, bson.M{})
}

func (r *LectureRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Lecture, error) {
	return r.docs.findByID(ctx, id)
}

func (r *LectureRepository) Update(ctx context.Context, id primitive.ObjectID, p *model.LecturePatch) (*model.Lecture, error) {
	return r.docs.update(ctx, id, lectureSetDoc(p, model.Now()))
}

func (r *LectureRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.docs.delete(ctx, id)
}

func lectureSetDoc(p *model.LecturePatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Topic != nil {
		set["topic"] = *p.Topic
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.VideoURL != nil {
		set["videoUrl"] = *p.VideoURL
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Duration != nil {
		set["duration"] = *p.Duration
	}
	return set
}
