package model

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// ParseDifficulty reports whether s names one of the known levels.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, true
	}
	return "", false
}

// Question is a multiple-choice aptitude question.
type Question struct {
	Base          `bson:",inline"`
	QuestionText  string     `bson:"questionText" json:"questionText" validate:"required"`
	Options       []string   `bson:"options" json:"options" validate:"required,min=1,dive,required"`
	CorrectAnswer string     `bson:"correctAnswer" json:"correctAnswer" validate:"required"`
	Category      string     `bson:"category" json:"category" validate:"required"`
	Difficulty    Difficulty `bson:"difficulty" json:"difficulty" validate:"oneof=Easy Medium Hard"`
	Topic         string     `bson:"topic" json:"topic" validate:"required"`
	Solution      string     `bson:"solution" json:"solution" validate:"required"`
	ImageURL      *string    `bson:"imageUrl" json:"imageUrl"`
	Company       string     `bson:"company,omitempty" json:"company,omitempty"`
}

func (Question) CollectionName() string {
	return "questions"
}

// QuestionPatch holds the fields of a sparse update; nil means untouched.
type QuestionPatch struct {
	QuestionText  *string
	Options       []string
	CorrectAnswer *string
	Category      *string
	Difficulty    *Difficulty
	Topic         *string
	Solution      *string
	ImageURL      *string
	Company       *string
}

// QuestionFilter narrows a listing by exact match; empty fields impose nothing.
type QuestionFilter struct {
	Topic   string
	Company string
}
