// Package model defines domain entities shared by the API client and callers.
package model

// User is the profile snapshot kept with a session. The server owns the
// canonical record; Points is updated optimistically after an attempt.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Points   int    `json:"points"`
	Streak   int    `json:"streak,omitempty"`
	IsGuest  bool   `json:"is_guest,omitempty"`
}

// Tokens collects issued access/refresh credentials.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// MediaKind discriminates question/answer media attachments.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Media references an uploaded file attached to a question or answer.
type Media struct {
	ID          int64     `json:"id,omitempty"`
	Kind        MediaKind `json:"media_type"`
	URL         string    `json:"media_url"`
	Description string    `json:"description,omitempty"`
}

// Quiz is quiz metadata as served by the backend. Immutable once fetched
// for play.
type Quiz struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	QuestionIDs  []int64 `json:"question_ids,omitempty"`
	TimeLimit    *int    `json:"time_limit"` // seconds; nil means untimed
	MaxQuestions int     `json:"max_questions,omitempty"`
	IsPublic     bool    `json:"is_public"`
}

// AnswerOption is one selectable answer. IsCorrect is populated by the
// question fetch and echoed back on submission; the server stays
// authoritative for the stored result.
type AnswerOption struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Media     *Media `json:"media,omitempty"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is a prompt with its ordered answer options.
type Question struct {
	ID         int64          `json:"id"`
	Text       string         `json:"text"`
	Media      *Media         `json:"media,omitempty"`
	Difficulty int            `json:"difficulty"` // 1..5
	Answers    []AnswerOption `json:"answers"`
}

// AnswerRecord is one per-question result line in an attempt submission.
// SelectedAnswerID is nil for unanswered questions.
type AnswerRecord struct {
	QuestionID       int64  `json:"question_id"`
	SelectedAnswerID *int64 `json:"selected_answer_id"`
	IsCorrect        bool   `json:"is_correct"`
	TimeTaken        *int   `json:"time_taken"`
}

// AttemptSubmission is the POST /quiz-attempts/ payload.
type AttemptSubmission struct {
	Quiz      int64          `json:"quiz"`
	Answers   []AnswerRecord `json:"answers"`
	TimeTaken *int           `json:"time_taken"`
}

// AttemptResult is the server's response to an attempt submission.
type AttemptResult struct {
	ID             int64   `json:"id,omitempty"`
	Score          int     `json:"score"`
	CorrectAnswers int     `json:"correct_answers"`
	Percentage     float64 `json:"percentage"`
	TimeTaken      int     `json:"time_taken"`
}

// MatchPlayer is a participant inside a match snapshot.
type MatchPlayer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Match is the lifecycle snapshot of a multiplayer match. Consumed opaquely;
// fields beyond these are ignored.
type Match struct {
	ID      int64         `json:"id"`
	Code    string        `json:"code,omitempty"`
	Status  string        `json:"status"`
	QuizID  int64         `json:"quiz"`
	Players []MatchPlayer `json:"players,omitempty"`
}

// LeaderboardEntry is one ranking row.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}
