package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Content validation errors
var (
	ErrEmptyModuleName   = errors.New("module name cannot be empty")
	ErrEmptyTopicTitle   = errors.New("topic title cannot be empty")
	ErrEmptyQuestion     = errors.New("question text cannot be empty")
	ErrEmptyModuleID     = errors.New("module ID cannot be empty")
	ErrInvalidFrequency  = errors.New("frequency score must be between 1 and 10")
	ErrNegativeEstimate  = errors.New("estimated duration cannot be negative")
	ErrInvalidEnrichment = errors.New("enrichment must reference content and have a kind")
)

// Category groups learning modules by subject area.
type Category string

const (
	CategoryProgrammingLanguages Category = "PROGRAMMING_LANGUAGES"
	CategoryFrameworks           Category = "FRAMEWORKS"
	CategoryDatabases            Category = "DATABASES"
	CategorySystemDesign         Category = "SYSTEM_DESIGN"
	CategoryDataStructures       Category = "DATA_STRUCTURES"
	CategoryAlgorithms           Category = "ALGORITHMS"
	CategoryMicroservices        Category = "MICROSERVICES"
	CategoryCloudComputing       Category = "CLOUD_COMPUTING"
	CategoryDevOps               Category = "DEVOPS"
	CategorySecurity             Category = "SECURITY"
	CategoryTesting              Category = "TESTING"
	CategoryFrontend             Category = "FRONTEND"
	CategoryBackend              Category = "BACKEND"
	CategoryMobile               Category = "MOBILE"
	CategoryMachineLearning      Category = "MACHINE_LEARNING"
	CategoryInterviewPrep        Category = "INTERVIEW_PREP"
)

var categoryDisplayNames = map[Category]string{
	CategoryProgrammingLanguages: "Programming Languages",
	CategoryFrameworks:           "Frameworks & Libraries",
	CategoryDatabases:            "Databases",
	CategorySystemDesign:         "System Design",
	CategoryDataStructures:       "Data Structures",
	CategoryAlgorithms:           "Algorithms",
	CategoryMicroservices:        "Microservices",
	CategoryCloudComputing:       "Cloud Computing",
	CategoryDevOps:               "DevOps",
	CategorySecurity:             "Security",
	CategoryTesting:              "Testing",
	CategoryFrontend:             "Frontend Development",
	CategoryBackend:              "Backend Development",
	CategoryMobile:               "Mobile Development",
	CategoryMachineLearning:      "Machine Learning",
	CategoryInterviewPrep:        "Interview Preparation",
}

// DisplayName returns the human readable category label.
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// ParseCategory maps free text to a Category. Unknown values map to
// CategoryProgrammingLanguages and ok is false.
func ParseCategory(s string) (c Category, ok bool) {
	c = Category(normalizeEnum(s))
	if _, known := categoryDisplayNames[c]; known {
		return c, true
	}
	return CategoryProgrammingLanguages, false
}

// DifficultyLevel describes how demanding a module is.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "BEGINNER"
	DifficultyIntermediate DifficultyLevel = "INTERMEDIATE"
	DifficultyAdvanced     DifficultyLevel = "ADVANCED"
	DifficultyExpert       DifficultyLevel = "EXPERT"
)

// ParseDifficultyLevel maps free text to a DifficultyLevel, defaulting to beginner.
func ParseDifficultyLevel(s string) (DifficultyLevel, bool) {
	switch d := DifficultyLevel(normalizeEnum(s)); d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return d, true
	default:
		return DifficultyBeginner, false
	}
}

// TopicType distinguishes the kinds of material a topic holds.
type TopicType string

const (
	TopicLearningContent   TopicType = "LEARNING_CONTENT"
	TopicInterviewQuestion TopicType = "INTERVIEW_QUESTION"
	TopicCodeExample       TopicType = "CODE_EXAMPLE"
	TopicPracticeExercise  TopicType = "PRACTICE_EXERCISE"
)

// ParseTopicType maps free text to a TopicType, defaulting to learning content.
func ParseTopicType(s string) (TopicType, bool) {
	switch t := TopicType(normalizeEnum(s)); t {
	case TopicLearningContent, TopicInterviewQuestion, TopicCodeExample, TopicPracticeExercise:
		return t, true
	default:
		return TopicLearningContent, false
	}
}

// QuestionDifficulty grades an interview question.
type QuestionDifficulty string

const (
	QuestionEasy   QuestionDifficulty = "EASY"
	QuestionMedium QuestionDifficulty = "MEDIUM"
	QuestionHard   QuestionDifficulty = "HARD"
	QuestionExpert QuestionDifficulty = "EXPERT"
)

// ParseQuestionDifficulty maps free text to a QuestionDifficulty, defaulting to medium.
func ParseQuestionDifficulty(s string) (QuestionDifficulty, bool) {
	switch d := QuestionDifficulty(normalizeEnum(s)); d {
	case QuestionEasy, QuestionMedium, QuestionHard, QuestionExpert:
		return d, true
	default:
		return QuestionMedium, false
	}
}

// Company is the employer an interview question is associated with.
type Company string

const (
	CompanyAmazon    Company = "AMAZON"
	CompanyGoogle    Company = "GOOGLE"
	CompanyMicrosoft Company = "MICROSOFT"
	CompanyMeta      Company = "META"
	CompanyApple     Company = "APPLE"
	CompanyNetflix   Company = "NETFLIX"
	CompanyGeneral   Company = "GENERAL"
)

// ParseCompany maps free text ("Amazon", "facebook", ...) to a Company.
// Anything unrecognized maps to CompanyGeneral.
func ParseCompany(s string) (Company, bool) {
	switch c := Company(normalizeEnum(s)); c {
	case CompanyAmazon, CompanyGoogle, CompanyMicrosoft, CompanyMeta, CompanyApple, CompanyNetflix:
		return c, true
	case "FACEBOOK":
		return CompanyMeta, true
	default:
		return CompanyGeneral, false
	}
}

// DisplayName returns the company name in title case.
func (c Company) DisplayName() string {
	if c == "" {
		return "General"
	}
	s := strings.ToLower(string(c))
	return strings.ToUpper(s[:1]) + s[1:]
}

// LearningModule is the top level container of the catalog.
type LearningModule struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       Category        `json:"category"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	EstimatedHours int             `json:"estimated_hours"`
	SortOrder      int             `json:"sort_order"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewLearningModule creates an active module with a fresh ID.
func NewLearningModule(name, description string, category Category, difficulty DifficultyLevel) (*LearningModule, error) {
	now := time.Now().UTC()
	m := &LearningModule{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Category:    category,
		Difficulty:  difficulty,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the module has valid data.
func (m *LearningModule) Validate() error {
	if m.ID == uuid.Nil {
		return ErrInvalidID
	}
	if m.Name == "" {
		return ErrEmptyModuleName
	}
	if m.EstimatedHours < 0 {
		return ErrNegativeEstimate
	}
	return nil
}

// Topic is a unit of study inside a module.
type Topic struct {
	ID               uuid.UUID `json:"id"`
	ModuleID         uuid.UUID `json:"module_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Content          string    `json:"content,omitempty"`
	CodeExamples     string    `json:"code_examples,omitempty"`
	Type             TopicType `json:"type"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	SortOrder        int       `json:"sort_order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks if the topic has valid data.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrInvalidID
	}
	if t.ModuleID == uuid.Nil {
		return ErrEmptyModuleID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTopicTitle
	}
	if t.EstimatedMinutes < 0 {
		return ErrNegativeEstimate
	}
	return nil
}

// HighFrequencyScore is the frequency score at or above which a question is
// considered commonly asked.
const HighFrequencyScore = 7

// InterviewQuestion is a practice question attached to a module and,
// optionally, to the topic it exercises.
type InterviewQuestion struct {
	ID             uuid.UUID          `json:"id"`
	ModuleID       uuid.UUID          `json:"module_id"`
	TopicID        *uuid.UUID         `json:"topic_id,omitempty"`
	Question       string             `json:"question"`
	Answer         string             `json:"answer"`
	Difficulty     QuestionDifficulty `json:"difficulty"`
	Company        Company            `json:"company"`
	Tags           []string           `json:"tags"`
	FrequencyScore int                `json:"frequency_score"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Validate checks if the question has valid data.
func (q *InterviewQuestion) Validate() error {
	if q.ID == uuid.Nil {
		return ErrInvalidID
	}
	if q.ModuleID == uuid.Nil {
		return ErrEmptyModuleID
	}
	if strings.TrimSpace(q.Question) == "" {
		return ErrEmptyQuestion
	}
	if q.FrequencyScore < 1 || q.FrequencyScore > 10 {
		return ErrInvalidFrequency
	}
	return nil
}

// IsHighFrequency reports whether the question is commonly asked.
func (q *InterviewQuestion) IsHighFrequency() bool {
	return q.FrequencyScore >= HighFrequencyScore
}

func normalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_", "&", "AND").Replace(s)
}
