package repository

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"
	"sort"
	"sync"

	"gorm.io/datatypes"
)

// memoryData 是内存存储的共享状态，单把读写锁保证按 ID 的原子读写
type memoryData struct {
	mu       sync.RWMutex
	quizzes  map[string]*model.Quiz
	attempts map[string]*model.Attempt
	users    map[string]*model.User
}

// NewMemoryStore 创建进程内存储，用于测试和 driver=memory
func NewMemoryStore() *Store {
	data := &memoryData{
		quizzes:  make(map[string]*model.Quiz),
		attempts: make(map[string]*model.Attempt),
		users:    make(map[string]*model.User),
	}
	return NewStore(
		&memoryQuizRepository{data},
		&memoryAttemptRepository{data},
		&memoryUserRepository{data},
		nil,
		nil,
	)
}

func cloneStrings(in datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], len(in))
	copy(out, in)
	return out
}

func cloneQuiz(q *model.Quiz) *model.Quiz {
	c := *q
	c.Questions = make([]model.Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.Options = cloneStrings(qu.Options)
		c.Questions[i] = qu
	}
	c.AttemptedBy = cloneStrings(q.AttemptedBy)
	c.Attempts = cloneStrings(q.Attempts)
	return &c
}

func cloneAttempt(a *model.Attempt) *model.Attempt {
	c := *a
	c.Questions = make([]model.AttemptQuestion, len(a.Questions))
	for i, qu := range a.Questions {
		qu.Options = cloneStrings(qu.Options)
		if qu.MarkedOption != nil {
			v := *qu.MarkedOption
			qu.MarkedOption = &v
		}
		c.Questions[i] = qu
	}
	if a.FinalizedAt != nil {
		t := *a.FinalizedAt
		c.FinalizedAt = &t
	}
	return &c
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.QuizzesCreated = cloneStrings(u.QuizzesCreated)
	c.QuizzesAttempted = cloneStrings(u.QuizzesAttempted)
	c.Announcements = make([]model.Announcement, len(u.Announcements))
	copy(c.Announcements, u.Announcements)
	return &c
}

type memoryQuizRepository struct{ d *memoryData }

func (r *memoryQuizRepository) Create(_ context.Context, quiz *model.Quiz) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if quiz.ID == "" {
		quiz.ID = model.GenerateUUID()
	}
	if _, ok := r.d.quizzes[quiz.ID]; ok {
		return util.ErrConflict
	}
	r.d.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (r *memoryQuizRepository) FindByID(_ context.Context, id string) (*model.Quiz, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	q, ok := r.d.quizzes[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return cloneQuiz(q), nil
}

func sortQuizzes(quizzes []model.Quiz) {
	sort.SliceStable(quizzes, func(i, j int) bool {
		if quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].ID < quizzes[j].ID
		}
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
}

func (r *memoryQuizRepository) ListPublic(_ context.Context, page, limit int) ([]model.Quiz, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var all []model.Quiz
	for _, q := range r.d.quizzes {
		if q.IsPublic {
			all = append(all, *cloneQuiz(q))
		}
	}
	sortQuizzes(all)

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []model.Quiz{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memoryQuizRepository) ListByCreator(_ context.Context, creatorID string) ([]model.Quiz, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	out := []model.Quiz{}
	for _, q := range r.d.quizzes {
		if q.CreatorID == creatorID {
			out = append(out, *cloneQuiz(q))
		}
	}
	sortQuizzes(out)
	return out, nil
}

func (r *memoryQuizRepository) Update(_ context.Context, quiz *model.Quiz) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	cur, ok := r.d.quizzes[quiz.ID]
	if !ok {
		return util.ErrNotFound
	}
	next := cloneQuiz(quiz)
	// 引用列表由 AddAttempt 维护，更新时保留存储中的值
	next.AttemptedBy = cur.AttemptedBy
	next.Attempts = cur.Attempts
	next.CreatedAt = cur.CreatedAt
	next.CreatorID = cur.CreatorID
	r.d.quizzes[quiz.ID] = next
	return nil
}

func (r *memoryQuizRepository) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.quizzes[id]; !ok {
		return util.ErrNotFound
	}
	delete(r.d.quizzes, id)
	return nil
}

func (r *memoryQuizRepository) AddAttempt(_ context.Context, quizID, attemptID, userID string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	q, ok := r.d.quizzes[quizID]
	if !ok {
		return util.ErrNotFound
	}
	q.Attempts = append(q.Attempts, attemptID)
	if !q.HasAttempted(userID) {
		q.AttemptedBy = append(q.AttemptedBy, userID)
	}
	return nil
}

type memoryAttemptRepository struct{ d *memoryData }

func (r *memoryAttemptRepository) Create(_ context.Context, attempt *model.Attempt) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if attempt.ID == "" {
		attempt.ID = model.GenerateUUID()
	}
	if _, ok := r.d.attempts[attempt.ID]; ok {
		return util.ErrConflict
	}
	r.d.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (r *memoryAttemptRepository) FindByID(_ context.Context, id string) (*model.Attempt, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	a, ok := r.d.attempts[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return cloneAttempt(a), nil
}

func (r *memoryAttemptRepository) ListByUser(_ context.Context, userID string) ([]model.Attempt, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	out := []model.Attempt{}
	for _, a := range r.d.attempts {
		if a.UserID == userID {
			out = append(out, *cloneAttempt(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryAttemptRepository) SetMarkedOption(_ context.Context, attemptID string, questionNumber int, choice string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	a, ok := r.d.attempts[attemptID]
	if !ok {
		return util.ErrNotFound
	}
	q, ok := a.QuestionByNumber(questionNumber)
	if !ok {
		return util.ErrNotFound
	}
	v := choice
	q.MarkedOption = &v
	return nil
}

func (r *memoryAttemptRepository) MarkInProgress(_ context.Context, attemptID string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	a, ok := r.d.attempts[attemptID]
	if !ok {
		return util.ErrNotFound
	}
	if a.Status == model.AttemptCreated {
		a.Status = model.AttemptInProgress
	}
	return nil
}

func (r *memoryAttemptRepository) SaveResult(_ context.Context, attempt *model.Attempt) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	cur, ok := r.d.attempts[attempt.ID]
	if !ok {
		return util.ErrNotFound
	}
	if cur.IsFinalized() {
		return util.ErrAlreadyFinalized
	}

	cur.TimeTaken = attempt.TimeTaken
	cur.TotalMarks = attempt.TotalMarks
	cur.MaxMarks = attempt.MaxMarks
	cur.IsCompleted = attempt.IsCompleted
	cur.Status = attempt.Status
	cur.UpdatedAt = attempt.UpdatedAt
	if attempt.FinalizedAt != nil {
		t := *attempt.FinalizedAt
		cur.FinalizedAt = &t
	}
	for _, graded := range attempt.Questions {
		q, ok := cur.QuestionByNumber(graded.QuestionNumber)
		if !ok {
			continue
		}
		q.Answer = graded.Answer
		q.Marks = graded.Marks
		q.IsCorrect = graded.IsCorrect
		q.Score = graded.Score
	}
	return nil
}

type memoryUserRepository struct{ d *memoryData }

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if user.ID == "" {
		user.ID = model.GenerateUUID()
	}
	for _, u := range r.d.users {
		if u.ID == user.ID || u.Email == user.Email || u.Username == user.Username {
			return util.ErrConflict
		}
	}
	r.d.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepository) find(match func(u *model.User) bool) (*model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, u := range r.d.users {
		if match(u) {
			c := cloneUser(u)
			sort.SliceStable(c.Announcements, func(i, j int) bool {
				return c.Announcements[i].CreatedAt.After(c.Announcements[j].CreatedAt)
			})
			return c, nil
		}
	}
	return nil, util.ErrNotFound
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) mutate(userID string, fn func(u *model.User) error) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u, ok := r.d.users[userID]
	if !ok {
		return util.ErrNotFound
	}
	return fn(u)
}

func (r *memoryUserRepository) AddCreatedQuiz(_ context.Context, userID, quizID string) error {
	return r.mutate(userID, func(u *model.User) error {
		for _, id := range u.QuizzesCreated {
			if id == quizID {
				return nil
			}
		}
		u.QuizzesCreated = append(u.QuizzesCreated, quizID)
		return nil
	})
}

func (r *memoryUserRepository) RemoveCreatedQuiz(_ context.Context, userID, quizID string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.QuizzesCreated = removeRef(u.QuizzesCreated, quizID)
		return nil
	})
}

func (r *memoryUserRepository) AddAttemptedQuiz(_ context.Context, userID, attemptID string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.QuizzesAttempted = append(u.QuizzesAttempted, attemptID)
		return nil
	})
}

func (r *memoryUserRepository) AddAnnouncement(_ context.Context, userID string, announcement *model.Announcement) error {
	return r.mutate(userID, func(u *model.User) error {
		announcement.UserID = userID
		u.Announcements = append(u.Announcements, *announcement)
		return nil
	})
}

func (r *memoryUserRepository) MarkAnnouncementRead(_ context.Context, userID, announcementID string) error {
	return r.mutate(userID, func(u *model.User) error {
		for i := range u.Announcements {
			if u.Announcements[i].ID == announcementID {
				u.Announcements[i].Read = true
				return nil
			}
		}
		return util.ErrNotFound
	})
}

func (r *memoryUserRepository) MarkAllAnnouncementsRead(_ context.Context, userID string) error {
	return r.mutate(userID, func(u *model.User) error {
		for i := range u.Announcements {
			u.Announcements[i].Read = true
		}
		return nil
	})
}

func (r *memoryUserRepository) DeleteAnnouncement(_ context.Context, userID, announcementID string) error {
	return r.mutate(userID, func(u *model.User) error {
		for i := range u.Announcements {
			if u.Announcements[i].ID == announcementID {
				u.Announcements = append(u.Announcements[:i], u.Announcements[i+1:]...)
				return nil
			}
		}
		return util.ErrNotFound
	})
}
