package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quizhub/internal/errs"
	"quizhub/internal/model"
	"quizhub/internal/session"
)

// State is the attempt lifecycle. Finished is terminal: a new play-through
// needs a new Session.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrState reports an operation invalid in the current state.
var ErrState = errors.New("invalid state")

// Backend is what the session needs from the API client.
type Backend interface {
	GetQuiz(ctx context.Context, id int64) (*model.Quiz, error)
	GetQuestions(ctx context.Context, quizID int64) ([]model.Question, error)
	SubmitAttempt(ctx context.Context, sub model.AttemptSubmission) (*model.AttemptResult, error)
}

// Session drives one solo attempt. All mutation is serialized behind the
// mutex; the countdown goroutine goes through the same lock, so selection
// writes and timer expiry never race.
type Session struct {
	id    uuid.UUID
	api   Backend
	store session.Store
	log   *zap.Logger

	now  func() time.Time
	tick time.Duration

	mu        sync.Mutex
	state     State
	quiz      *model.Quiz
	questions []model.Question
	index     int
	selected  map[int64]model.AnswerOption
	startedAt time.Time
	remaining time.Duration
	timed     bool
	stopTimer chan struct{}

	// Submission payload is computed once on entering Finished; retries
	// resend it unchanged.
	submission   *model.AttemptSubmission
	submitting   bool
	submitFailed bool
	result       *model.AttemptResult
}

// New constructs an idle session. A nil logger disables logging.
func New(api Backend, store session.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id, _ := uuid.NewV4()
	return &Session{
		id:       id,
		api:      api,
		store:    store,
		log:      logger.With(zap.String("attempt", id.String()[:8])),
		now:      time.Now,
		tick:     time.Second,
		selected: make(map[int64]model.AnswerOption),
	}
}

// Load fetches the quiz and its questions in parallel. Partial success is
// total failure; on any failure the session returns to Idle.
func (s *Session) Load(ctx context.Context, quizID int64) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return fmt.Errorf("%w: load from %s", ErrState, s.state)
	}
	s.state = Loading
	s.mu.Unlock()

	var (
		quiz      *model.Quiz
		questions []model.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.api.GetQuiz(gctx, quizID)
		quiz = q
		return err
	})
	g.Go(func() error {
		qs, err := s.api.GetQuestions(gctx, quizID)
		questions = qs
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Idle
		return err
	}
	if len(questions) == 0 {
		s.state = Idle
		return fmt.Errorf("%w: quiz %d has no questions", errs.ErrNotFound, quizID)
	}
	s.quiz = quiz
	s.questions = questions
	s.state = Ready
	s.log.Debug("quiz loaded",
		zap.Int64("quiz", quizID),
		zap.Int("questions", len(questions)),
	)
	return nil
}

// Start begins play: records the start timestamp and arms the countdown when
// the quiz declares a time limit.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return fmt.Errorf("%w: start from %s", ErrState, s.state)
	}
	s.state = Playing
	s.startedAt = s.now()
	if s.quiz.TimeLimit != nil && *s.quiz.TimeLimit > 0 {
		s.timed = true
		s.remaining = time.Duration(*s.quiz.TimeLimit) * time.Second
		s.stopTimer = make(chan struct{})
		go s.countdown(s.stopTimer)
	}
	return nil
}

// countdown decrements the budget once per tick and triggers submission at
// zero. It exits when the session leaves Playing.
func (s *Session) countdown(stop chan struct{}) {
	t := time.NewTicker(s.tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			if s.state != Playing {
				s.mu.Unlock()
				return
			}
			s.remaining -= time.Second
			if s.remaining > 0 {
				s.mu.Unlock()
				continue
			}
			s.remaining = 0
			s.log.Info("time expired, auto-submitting")
			s.finishLocked()
			s.mu.Unlock()
			// Uses whatever answers were recorded; unanswered questions
			// score as unselected.
			s.submit(context.Background())
			return
		}
	}
}

// SelectAnswer records (or overwrites, last write wins) the selection for the
// current question. The answer must belong to that question.
func (s *Session) SelectAnswer(answerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return fmt.Errorf("%w: select from %s", ErrState, s.state)
	}
	q := s.questions[s.index]
	for _, a := range q.Answers {
		if a.ID == answerID {
			s.selected[q.ID] = a
			return nil
		}
	}
	return fmt.Errorf("answer %d does not belong to question %d", answerID, q.ID)
}

// Next advances to the following question; from the last question it triggers
// submission and reports finished=true.
func (s *Session) Next(ctx context.Context) (finished bool, err error) {
	s.mu.Lock()
	if s.state != Playing {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: next from %s", ErrState, s.state)
	}
	if s.index < len(s.questions)-1 {
		s.index++
		s.mu.Unlock()
		return false, nil
	}
	s.finishLocked()
	s.mu.Unlock()
	return true, s.submit(ctx)
}

// Previous steps back without clearing recorded answers.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return fmt.Errorf("%w: previous from %s", ErrState, s.state)
	}
	if s.index == 0 {
		return fmt.Errorf("already at first question")
	}
	s.index--
	return nil
}

// Finish submits early with whatever answers are recorded. Identical
// semantics to time expiry. Calling it again once Finished is a no-op.
func (s *Session) Finish(ctx context.Context) (*model.AttemptResult, error) {
	s.mu.Lock()
	if s.state == Finished {
		res := s.result
		s.mu.Unlock()
		return res, nil
	}
	if s.state != Playing {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: finish from %s", ErrState, s.state)
	}
	s.finishLocked()
	s.mu.Unlock()
	if err := s.submit(ctx); err != nil {
		return nil, err
	}
	return s.Result(), nil
}

// finishLocked transitions to Finished and freezes the submission payload.
// Caller holds the lock. Runs at most once per session.
func (s *Session) finishLocked() {
	if s.state == Finished {
		return
	}
	s.state = Finished
	if s.stopTimer != nil {
		close(s.stopTimer)
		s.stopTimer = nil
	}

	elapsed := int(s.now().Sub(s.startedAt) / time.Second)
	records := make([]model.AnswerRecord, 0, len(s.questions))
	for _, q := range s.questions {
		rec := model.AnswerRecord{QuestionID: q.ID}
		if a, ok := s.selected[q.ID]; ok {
			id := a.ID
			rec.SelectedAnswerID = &id
			rec.IsCorrect = a.IsCorrect
		}
		records = append(records, rec)
	}
	s.submission = &model.AttemptSubmission{
		Quiz:      s.quiz.ID,
		Answers:   records,
		TimeTaken: &elapsed,
	}
}

// submit sends the frozen payload. At most one attempt is in flight; a
// trigger while one is pending is a no-op. On failure the session stays
// Finished with the submission-failed flag set and the answers intact.
func (s *Session) submit(ctx context.Context) error {
	s.mu.Lock()
	if s.submitting || s.result != nil || s.submission == nil {
		s.mu.Unlock()
		return nil
	}
	s.submitting = true
	sub := *s.submission
	s.mu.Unlock()

	res, err := s.api.SubmitAttempt(ctx, sub)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.submitFailed = true
		s.mu.Unlock()
		s.log.Warn("attempt submission failed", zap.Error(err))
		return err
	}
	s.submitFailed = false
	s.result = res
	s.mu.Unlock()

	// Optimistic points bump for registered users; the store ignores guests.
	if err := s.store.UpdatePoints(res.Score); err != nil {
		s.log.Warn("points update failed", zap.Error(err))
	}
	s.log.Info("attempt submitted",
		zap.Int("score", res.Score),
		zap.Int("correct", res.CorrectAnswers),
	)
	return nil
}

// RetrySubmit re-runs only the submission step after a failure.
func (s *Session) RetrySubmit(ctx context.Context) (*model.AttemptResult, error) {
	s.mu.Lock()
	if s.state != Finished {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: retry from %s", ErrState, s.state)
	}
	if !s.submitFailed && s.result != nil {
		res := s.result
		s.mu.Unlock()
		return res, nil
	}
	s.mu.Unlock()
	if err := s.submit(ctx); err != nil {
		return nil, err
	}
	return s.Result(), nil
}

// Abort cancels the countdown and discards the in-memory attempt. No partial
// persistence.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Finished {
		return
	}
	s.state = Finished
	if s.stopTimer != nil {
		close(s.stopTimer)
		s.stopTimer = nil
	}
	s.selected = nil
	s.submission = nil
}

// ---- accessors ----

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Quiz() *model.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

// Current returns the question under the cursor and its 0-based index.
func (s *Session) Current() (model.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing || s.index >= len(s.questions) {
		return model.Question{}, 0, false
	}
	return s.questions[s.index], s.index, true
}

// Progress reports answered count and total questions.
func (s *Session) Progress() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected), len(s.questions)
}

// Remaining reports the countdown budget; ok is false for untimed quizzes.
func (s *Session) Remaining() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining, s.timed
}

// Selected returns the current selection for a question, if any.
func (s *Session) Selected(questionID int64) (model.AnswerOption, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.selected[questionID]
	return a, ok
}

// Result returns the server's scoring once submission succeeded.
func (s *Session) Result() *model.AttemptResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SubmitFailed reports whether the last submission attempt failed and a
// manual retry is available.
func (s *Session) SubmitFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitFailed
}
