package model

// Lecture is a video lesson; Topic is unique across all lectures.
type Lecture struct {
	Base        `bson:",inline"`
	Topic       string `bson:"topic" json:"topic" validate:"required"`
	Category    string `bson:"category" json:"category" validate:"required"`
	VideoURL    string `bson:"videoUrl" json:"videoUrl" validate:"required"`
	Description string `bson:"description" json:"description" validate:"required"`
	Duration    string `bson:"duration" json:"duration" validate:"required"`
}

func (Lecture) CollectionName() string {
	return "lectures"
}

type LecturePatch struct {
	Topic       *string
	Category    *string
	VideoURL    *string
	Description *string
	Duration    *string
}
