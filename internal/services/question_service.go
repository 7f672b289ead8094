package services

import "github.com/kingstonroots/yaadstory/internal/models"

// QuestionStore abstracts the read side of the fixed question set.
type QuestionStore interface {
	ListQuestions() ([]*models.Question, error)
}

type QuestionService struct {
	store QuestionStore
}

// QuestionView is the client-facing rendering of a question. Prompt holds the
// text in the requested locale so the client can display it directly, while
// both language variants stay available for switching without a refetch.
type QuestionView struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	TextPatois string `json:"textPatois,omitempty"`
	Section    string `json:"section,omitempty"`
	Order      int    `json:"order"`
	Prompt     string `json:"prompt"`
}

func NewQuestionService(store QuestionStore) *QuestionService {
	return &QuestionService{store: store}
}

// List returns the question set ordered by position, localized for locale
// ("en" or "pat"). Patois falls back to English when no rendering exists.
func (s *QuestionService) List(locale string) ([]*QuestionView, error) {
	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, err
	}
	out := make([]*QuestionView, 0, len(questions))
	for _, q := range questions {
		v := &QuestionView{
			ID:         q.ID,
			Text:       q.Text,
			TextPatois: q.TextPatois,
			Section:    q.Section,
			Order:      q.Order,
			Prompt:     q.Text,
		}
		if locale == "pat" && q.TextPatois != "" {
			v.Prompt = q.TextPatois
		}
		out = append(out, v)
	}
	return out, nil
}
