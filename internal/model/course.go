package model

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Icon           string     `gorm:"size:32;default:'🎓'" json:"icon"`
	Color          string     `gorm:"size:16;default:'#4CAF50'" json:"color"`
	Order          int        `gorm:"column:sort_order;not null;uniqueIndex" json:"order"`
	EstimatedHours int        `gorm:"default:1" json:"estimatedHours"`
	Difficulty     Difficulty `gorm:"size:20;default:'beginner'" json:"difficulty"`
	IsActive       bool       `gorm:"index" json:"isActive"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Module
type Module struct {
	BaseModel
	CourseID    uint   `gorm:"not null;uniqueIndex:idx_module_course_order" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"column:sort_order;not null;uniqueIndex:idx_module_course_order" json:"order"`
	IsLocked    bool   `gorm:"default:false" json:"isLocked"`
	RequiredXP  int    `gorm:"default:0" json:"requiredXp"`
}

func (Module) TableName() string {
	return "modules"
}

type LessonType string

const (
	LessonTheory    LessonType = "theory"
	LessonQuiz      LessonType = "quiz"
	LessonPractice  LessonType = "practice"
	LessonFlashcard LessonType = "flashcard"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonTheory, LessonQuiz, LessonPractice, LessonFlashcard:
		return true
	}
	return false
}

type QuizOption struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

type QuizQuestion struct {
	Question    string       `json:"question" yaml:"question"`
	Options     []QuizOption `json:"options" yaml:"options"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation"`
}

type Flashcard struct {
	Front string `json:"front" yaml:"front"`
	Back  string `json:"back" yaml:"back"`
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	ModuleID         uint           `gorm:"not null;uniqueIndex:idx_lesson_module_order" json:"moduleId"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Type             LessonType     `gorm:"size:20;not null" json:"type"`
	Order            int            `gorm:"column:sort_order;not null;uniqueIndex:idx_lesson_module_order" json:"order"`
	XPReward         int            `gorm:"default:10" json:"xpReward"`
	Content          string         `gorm:"type:text" json:"content,omitempty"`
	ImageURL         string         `gorm:"size:512" json:"imageUrl,omitempty"`
	VideoURL         string         `gorm:"size:512" json:"videoUrl,omitempty"`
	QuizQuestions    []QuizQuestion `gorm:"serializer:json;type:text" json:"quizQuestions,omitempty"`
	PracticeSteps    []string       `gorm:"serializer:json;type:text" json:"practiceSteps,omitempty"`
	Flashcards       []Flashcard    `gorm:"serializer:json;type:text" json:"flashcards,omitempty"`
	EstimatedMinutes int            `gorm:"default:5" json:"estimatedMinutes"`
}

func (Lesson) TableName() string {
	return "lessons"
}
