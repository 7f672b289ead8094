package services

import (
	"time"

	"github.com/kingstonroots/yaadstory/internal/models"
)

// ResponseStore abstracts persistence for questionnaire responses. The
// uniqueness of (userID, questionID) is owned by the store: UpsertResponse
// must be atomic with respect to that key so concurrent saves for the same
// pair can never create two rows.
type ResponseStore interface {
	GetQuestion(id int64) (*models.Question, error)
	UpsertResponse(r *models.Response) (*models.Response, error)
	GetResponse(id int64) (*models.Response, error)
	ListResponsesByUser(userID int64) ([]*models.Response, error)
	DeleteResponsesByUser(userID int64) error
	ListAllResponses() ([]*ResponseWithUser, error)
}

// SaveResponseRequest is a full write: fields left zero clear the stored
// value, matching last-full-write-wins rather than a partial patch.
type SaveResponseRequest struct {
	QuestionID     int64    `json:"questionId"`
	TextResponse   string   `json:"textResponse"`
	AudioURL       string   `json:"audioUrl"`
	Transcriptions []string `json:"transcriptions"`
}

// ResponseWithUser decorates a response with its owner for admin review.
type ResponseWithUser struct {
	models.Response
	Username string `json:"username"`
	UserName string `json:"name"`
}

type ResponseService struct {
	store ResponseStore
	now   func() time.Time
}

func NewResponseService(store ResponseStore) *ResponseService {
	return &ResponseService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Save upserts the caller's response for one question. The first save for a
// (user, question) pair creates the row; every later save overwrites its
// mutable fields and keeps the same row id.
func (s *ResponseService) Save(userID int64, req SaveResponseRequest) (*models.Response, error) {
	if req.QuestionID <= 0 {
		return nil, NewInvalidError("questionId is required")
	}
	q, err := s.store.GetQuestion(req.QuestionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NewInvalidError("unknown question")
	}
	transcriptions := req.Transcriptions
	if transcriptions == nil {
		transcriptions = []string{}
	}
	return s.store.UpsertResponse(&models.Response{
		QuestionID:     req.QuestionID,
		UserID:         userID,
		TextResponse:   req.TextResponse,
		AudioURL:       req.AudioURL,
		Transcriptions: transcriptions,
		CreatedAt:      s.now(),
	})
}

// Get fetches one response by id, enforcing the owner-or-admin rule.
func (s *ResponseService) Get(id, viewerID int64, viewerRole models.Role) (*models.Response, error) {
	r, err := s.store.GetResponse(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, NewNotFoundError("response not found")
	}
	if r.UserID != viewerID && viewerRole != models.RoleAdmin {
		return nil, NewForbiddenError("not allowed to view this response")
	}
	return r, nil
}

// ListMine returns the caller's responses ordered by question id.
func (s *ResponseService) ListMine(userID int64) ([]*models.Response, error) {
	return s.store.ListResponsesByUser(userID)
}

// DeleteMine removes every response owned by the caller. Deleting an empty
// set is not an error, so the operation is idempotent.
func (s *ResponseService) DeleteMine(userID int64) error {
	return s.store.DeleteResponsesByUser(userID)
}

// ListAll returns every stored response with its owner, for admin review.
func (s *ResponseService) ListAll() ([]*ResponseWithUser, error) {
	return s.store.ListAllResponses()
}
