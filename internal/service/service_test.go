package service

import (
	"aptitude_backend/internal/model"
	"aptitude_backend/internal/util"
	"context"
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeQuestionStore struct {
	created   []*model.Question
	lastPatch *model.QuestionPatch
	listed    []model.Question
	err       error
}

func (f *fakeQuestionStore) Create(ctx context.Context, q *model.Question) error {
	if f.err != nil {
		return f.err
	}
	q.Touch(model.Now())
	f.created = append(f.created, q)
	return nil
}

func (f *fakeQuestionStore) List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	return f.listed, f.err
}

func (f *fakeQuestionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Question{Base: model.Base{ID: id}}, nil
}

func (f *fakeQuestionStore) Update(ctx context.Context, id primitive.ObjectID, p *model.QuestionPatch) (*model.Question, error) {
	f.lastPatch = p
	return &model.Question{Base: model.Base{ID: id}}, f.err
}

func (f *fakeQuestionStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return f.err
}

func str(s string) *string { return &s }

func validQuestion() QuestionInput {
	return QuestionInput{
		QuestionText:  str("Is water wet?"),
		Options:       model.OptionsString("Yes,No"),
		CorrectAnswer: str("Yes"),
		Category:      str("Logic"),
		Topic:         str("Reasoning"),
		Solution:      str("By definition."),
	}
}

func TestQuestionCreateNormalizesAndDefaults(t *testing.T) {
	store := &fakeQuestionStore{}
	svc := NewQuestionService(store)

	q, err := svc.Create(context.Background(), validQuestion())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !reflect.DeepEqual(q.Options, []string{"Yes", "No"}) {
		t.Fatalf("options = %q", q.Options)
	}
	if q.Difficulty != model.Medium {
		t.Fatalf("difficulty = %q, want Medium", q.Difficulty)
	}
	if q.ImageURL != nil {
		t.Fatalf("expected no image url, got %q", *q.ImageURL)
	}
	if q.ID.IsZero() || len(store.created) != 1 {
		t.Fatalf("expected one stored question with id")
	}
}

func TestQuestionCreateDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want model.Difficulty
	}{
		{in: "Hard", want: model.Hard},
		{in: "Easy", want: model.Easy},
		{in: "hard", want: model.Medium},
		{in: "", want: model.Medium},
	}
	for _, tc := range tests {
		in := validQuestion()
		in.Difficulty = str(tc.in)
		q, err := NewQuestionService(&fakeQuestionStore{}).Create(context.Background(), in)
		if err != nil {
			t.Fatalf("Create(%q): %v", tc.in, err)
		}
		if q.Difficulty != tc.want {
			t.Fatalf("difficulty for %q = %q, want %q", tc.in, q.Difficulty, tc.want)
		}
	}
}

func TestQuestionCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*QuestionInput)
		field string
	}{
		{name: "missing text", edit: func(in *QuestionInput) { in.QuestionText = nil }, field: "questionText"},
		{name: "empty solution", edit: func(in *QuestionInput) { in.Solution = str("") }, field: "solution"},
		{name: "missing options", edit: func(in *QuestionInput) { in.Options = model.RawOptions{} }, field: "options"},
		{name: "empty options string", edit: func(in *QuestionInput) { in.Options = model.OptionsString("") }, field: "options"},
		{name: "empty list", edit: func(in *QuestionInput) { in.Options = model.OptionsList([]string{}) }, field: "options"},
		{name: "blank option", edit: func(in *QuestionInput) { in.Options = model.OptionsString("A,,B") }, field: "options[1]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeQuestionStore{}
			in := validQuestion()
			tc.edit(&in)

			_, err := NewQuestionService(store).Create(context.Background(), in)
			var ve *util.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
			if len(store.created) != 0 {
				t.Fatalf("invalid question must not be stored")
			}
		})
	}
}

func TestQuestionListNeverNil(t *testing.T) {
	list, err := NewQuestionService(&fakeQuestionStore{}).List(context.Background(), model.QuestionFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestQuestionInvalidID(t *testing.T) {
	svc := NewQuestionService(&fakeQuestionStore{})
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, "nope"); !errors.Is(err, util.ErrInvalidID) {
		t.Fatalf("GetByID: expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.Update(ctx, "nope", QuestionInput{}); !errors.Is(err, util.ErrInvalidID) {
		t.Fatalf("Update: expected ErrInvalidID, got %v", err)
	}
	if err := svc.Delete(ctx, "nope"); !errors.Is(err, util.ErrInvalidID) {
		t.Fatalf("Delete: expected ErrInvalidID, got %v", err)
	}
}

func TestQuestionUpdatePatch(t *testing.T) {
	store := &fakeQuestionStore{}
	svc := NewQuestionService(store)
	id := primitive.NewObjectID().Hex()

	_, err := svc.Update(context.Background(), id, QuestionInput{
		Topic:      str("Geometry"),
		Options:    model.OptionsString(`["A","B"]`),
		Difficulty: str("Hard"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	p := store.lastPatch
	if p.Topic == nil || *p.Topic != "Geometry" {
		t.Fatalf("topic not patched: %+v", p)
	}
	if !reflect.DeepEqual(p.Options, []string{"A", "B"}) {
		t.Fatalf("options = %q", p.Options)
	}
	if p.Difficulty == nil || *p.Difficulty != model.Hard {
		t.Fatalf("difficulty not patched")
	}
	if p.QuestionText != nil || p.Solution != nil || p.ImageURL != nil {
		t.Fatalf("unsent fields must stay nil: %+v", p)
	}
}

func TestQuestionUpdateRejects(t *testing.T) {
	tests := []struct {
		name string
		in   QuestionInput
	}{
		{name: "empty topic", in: QuestionInput{Topic: str("")}},
		{name: "unknown difficulty", in: QuestionInput{Difficulty: str("Impossible")}},
		{name: "empty option", in: QuestionInput{Options: model.OptionsList([]string{"A", ""})}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeQuestionStore{}
			_, err := NewQuestionService(store).Update(context.Background(), primitive.NewObjectID().Hex(), tc.in)
			if !util.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if store.lastPatch != nil {
				t.Fatalf("store must not be called")
			}
		})
	}
}

func TestQuestionStoreErrorsPassThrough(t *testing.T) {
	svc := NewQuestionService(&fakeQuestionStore{err: util.ErrDuplicate})
	if _, err := svc.Create(context.Background(), validQuestion()); !errors.Is(err, util.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

type fakeLectureStore struct {
	lastPatch *model.LecturePatch
	created   int
}

func (f *fakeLectureStore) Create(ctx context.Context, l *model.Lecture) error {
	f.created++
	l.Touch(model.Now())
	return nil
}

func (f *fakeLectureStore) List(ctx context.Context) ([]model.Lecture, error) {
	return nil, nil
}

func (f *fakeLectureStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Lecture, error) {
	return nil, util.ErrNotFound
}

func (f *fakeLectureStore) Update(ctx context.Context, id primitive.ObjectID, p *model.LecturePatch) (*model.Lecture, error) {
	f.lastPatch = p
	return &model.Lecture{Base: model.Base{ID: id}}, nil
}

func (f *fakeLectureStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func TestLectureCreate(t *testing.T) {
	store := &fakeLectureStore{}
	svc := NewLectureService(store)

	in := LectureInput{
		Topic:       str("Percentages"),
		Category:    str("Quant"),
		VideoURL:    str("https://video.example/p"),
		Description: str("Basics"),
		Duration:    str("12:30"),
	}
	l, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.Topic != "Percentages" || store.created != 1 {
		t.Fatalf("unexpected lecture %+v", l)
	}

	in.VideoURL = nil
	_, err = svc.Create(context.Background(), in)
	var ve *util.ValidationError
	if !errors.As(err, &ve) || ve.Field != "videoUrl" {
		t.Fatalf("expected videoUrl validation error, got %v", err)
	}
}

func TestLectureUpdate(t *testing.T) {
	store := &fakeLectureStore{}
	svc := NewLectureService(store)
	id := primitive.NewObjectID().Hex()

	if _, err := svc.Update(context.Background(), id, LectureInput{Duration: str("")}); !util.IsValidation(err) {
		t.Fatalf("expected validation error for empty duration, got %v", err)
	}
	if _, err := svc.Update(context.Background(), id, LectureInput{Duration: str("15:00")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if store.lastPatch.Duration == nil || *store.lastPatch.Duration != "15:00" || store.lastPatch.Topic != nil {
		t.Fatalf("unexpected patch %+v", store.lastPatch)
	}
}

func TestLectureListNeverNil(t *testing.T) {
	list, err := NewLectureService(&fakeLectureStore{}).List(context.Background())
	if err != nil || list == nil {
		t.Fatalf("expected empty slice, got %#v, %v", list, err)
	}
}
