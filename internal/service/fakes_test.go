package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"brolearn_backend/internal/model"
	"brolearn_backend/internal/util"
)

// memDB backs all fake stores. Every method takes the one mutex, so each
// store call is atomic like a single SQL statement.
type memDB struct {
	mu sync.Mutex

	nextID       uint
	users        map[uint]*model.User
	courses      map[uint]*model.Course
	modules      map[uint]*model.Module
	lessons      map[uint]*model.Lesson
	progress     map[[2]uint]*model.Progress
	achievements []model.Achievement
	unlocks      map[[2]uint]model.UserAchievement

	// hooks for fault injection
	saveConflicts  int
	raceUnlock     map[uint]bool
	userSaves      int
	failUserSaveAt int
}

func newMemDB() *memDB {
	return &memDB{
		users:      make(map[uint]*model.User),
		courses:    make(map[uint]*model.Course),
		modules:    make(map[uint]*model.Module),
		lessons:    make(map[uint]*model.Lesson),
		progress:   make(map[[2]uint]*model.Progress),
		unlocks:    make(map[[2]uint]model.UserAchievement),
		raceUnlock: make(map[uint]bool),
	}
}

func (db *memDB) id() uint {
	db.nextID++
	return db.nextID
}

func (db *memDB) addUser(name string, xp int) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{Name: name, Email: name + "@example.com", XP: xp, Level: 1}
	u.ID = db.id()
	u.Level = levelFor(xp)
	db.users[u.ID] = u
	return cloneUser(u)
}

// addCourse creates a course with one module per entry of lessonsPerModule.
func (db *memDB) addCourse(xpReward int, lessonsPerModule ...int) (model.Course, []model.Lesson) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := &model.Course{Title: "Course", Order: len(db.courses) + 1, IsActive: true}
	c.ID = db.id()
	db.courses[c.ID] = c

	var lessons []model.Lesson
	for mi, n := range lessonsPerModule {
		m := &model.Module{CourseID: c.ID, Title: fmt.Sprintf("Module %d", mi+1), Order: mi + 1}
		m.ID = db.id()
		db.modules[m.ID] = m
		for li := 0; li < n; li++ {
			l := &model.Lesson{ModuleID: m.ID, Title: fmt.Sprintf("Lesson %d.%d", mi+1, li+1), Type: model.LessonTheory, Order: li + 1, XPReward: xpReward}
			l.ID = db.id()
			db.lessons[l.ID] = l
			lessons = append(lessons, *l)
		}
	}
	return *c, lessons
}

func (db *memDB) addAchievement(typ model.AchievementType, requirement, reward int) model.Achievement {
	db.mu.Lock()
	defer db.mu.Unlock()
	a := model.Achievement{Title: string(typ), Type: typ, Requirement: requirement, XPReward: reward}
	a.ID = db.id()
	db.achievements = append(db.achievements, a)
	return a
}

func (db *memDB) user(id uint) model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *cloneUser(db.users[id])
}

func (db *memDB) unlockCount(userID uint) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for k := range db.unlocks {
		if k[0] == userID {
			n++
		}
	}
	return n
}

func levelFor(xp int) int {
	level := xp/100 + 1
	if level > 50 {
		return 50
	}
	return level
}

func cloneUser(u *model.User) *model.User {
	c := *u
	if u.LastActivityAt != nil {
		t := *u.LastActivityAt
		c.LastActivityAt = &t
	}
	return &c
}

func cloneProgress(p *model.Progress) *model.Progress {
	c := *p
	if p.Score != nil {
		s := *p.Score
		c.Score = &s
	}
	return &c
}

type fakeCatalog struct{ db *memDB }

func (f fakeCatalog) GetLesson(_ context.Context, id uint) (*model.Lesson, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if l, ok := f.db.lessons[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, util.ErrNotFound
}

func (f fakeCatalog) GetModule(_ context.Context, id uint) (*model.Module, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if m, ok := f.db.modules[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, util.ErrNotFound
}

func (f fakeCatalog) GetCourse(_ context.Context, id uint) (*model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if c, ok := f.db.courses[id]; ok {
		cc := *c
		return &cc, nil
	}
	return nil, util.ErrNotFound
}

func (f fakeCatalog) ListActiveCourses(_ context.Context) ([]model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Course
	for _, c := range f.db.courses {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f fakeCatalog) ListModules(_ context.Context, courseID uint) ([]model.Module, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Module
	for _, m := range f.db.modules {
		if m.CourseID == courseID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f fakeCatalog) ListLessons(_ context.Context, moduleIDs []uint) ([]model.Lesson, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	want := make(map[uint]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		want[id] = true
	}
	var out []model.Lesson
	for _, l := range f.db.lessons {
		if want[l.ModuleID] {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModuleID != out[j].ModuleID {
			return out[i].ModuleID < out[j].ModuleID
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (f fakeCatalog) CountLessonsInCourse(ctx context.Context, courseID uint) (int64, error) {
	counts, _ := f.CountLessonsByCourse(ctx)
	return counts[courseID], nil
}

func (f fakeCatalog) CountLessonsByCourse(_ context.Context) (map[uint]int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	counts := make(map[uint]int64)
	for _, l := range f.db.lessons {
		counts[f.db.modules[l.ModuleID].CourseID]++
	}
	return counts, nil
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, user *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == user.Email {
			return util.ErrConflict
		}
	}
	user.ID = f.db.id()
	f.db.users[user.ID] = cloneUser(user)
	return nil
}

func (f fakeUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if u, ok := f.db.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, util.ErrNotFound
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, util.ErrNotFound
}

func (f fakeUsers) Save(_ context.Context, user *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.userSaves++
	if f.db.failUserSaveAt > 0 && f.db.userSaves == f.db.failUserSaveAt {
		return fmt.Errorf("save user: %w", util.ErrPersistence)
	}
	stored, ok := f.db.users[user.ID]
	if !ok {
		return util.ErrNotFound
	}
	stored.XP = user.XP
	stored.Level = user.Level
	stored.Streak = user.Streak
	stored.LastActivityAt = cloneUser(user).LastActivityAt
	return nil
}

func (f fakeUsers) FindTopByXP(_ context.Context, limit int) ([]model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.User
	for _, u := range f.db.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeProgress struct{ db *memDB }

func (f fakeProgress) FindOne(_ context.Context, userID, lessonID uint) (*model.Progress, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if p, ok := f.db.progress[[2]uint{userID, lessonID}]; ok {
		return cloneProgress(p), nil
	}
	return nil, util.ErrNotFound
}

func (f fakeProgress) Create(_ context.Context, p *model.Progress) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uint{p.UserID, p.LessonID}
	if _, ok := f.db.progress[key]; ok {
		return fmt.Errorf("create progress: %w", util.ErrConflict)
	}
	p.ID = f.db.id()
	f.db.progress[key] = cloneProgress(p)
	return nil
}

func (f fakeProgress) Save(_ context.Context, p *model.Progress, priorAttempts int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.saveConflicts > 0 {
		f.db.saveConflicts--
		// another writer got there first
		f.db.progress[[2]uint{p.UserID, p.LessonID}].Attempts++
		return fmt.Errorf("save progress: %w", util.ErrConflict)
	}
	stored, ok := f.db.progress[[2]uint{p.UserID, p.LessonID}]
	if !ok || stored.ID != p.ID || stored.Attempts != priorAttempts {
		return fmt.Errorf("save progress: %w", util.ErrConflict)
	}
	f.db.progress[[2]uint{p.UserID, p.LessonID}] = cloneProgress(p)
	return nil
}

func (f fakeProgress) CountCompleted(_ context.Context, userID uint) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for k, p := range f.db.progress {
		if k[0] == userID && p.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (f fakeProgress) CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	counts, _ := f.CountCompletedByCourse(ctx, userID)
	return counts[courseID], nil
}

func (f fakeProgress) CountCompletedByCourse(_ context.Context, userID uint) (map[uint]int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	counts := make(map[uint]int64)
	for k, p := range f.db.progress {
		if k[0] == userID && p.IsCompleted {
			counts[p.CourseID]++
		}
	}
	return counts, nil
}

func (f fakeProgress) FindByUserAndLessons(_ context.Context, userID uint, lessonIDs []uint) (map[uint]model.Progress, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make(map[uint]model.Progress)
	for _, id := range lessonIDs {
		if p, ok := f.db.progress[[2]uint{userID, id}]; ok {
			out[id] = *cloneProgress(p)
		}
	}
	return out, nil
}

type fakeAchievements struct{ db *memDB }

func (f fakeAchievements) FindAll(_ context.Context) ([]model.Achievement, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]model.Achievement, len(f.db.achievements))
	copy(out, f.db.achievements)
	return out, nil
}

type fakeUnlocks struct{ db *memDB }

func (f fakeUnlocks) FindAllByUser(_ context.Context, userID uint) ([]model.UserAchievement, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.UserAchievement
	for k, ua := range f.db.unlocks {
		if k[0] == userID {
			out = append(out, ua)
		}
	}
	return out, nil
}

func (f fakeUnlocks) CreateIfAbsent(_ context.Context, ua *model.UserAchievement) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uint{ua.UserID, ua.AchievementID}
	if f.db.raceUnlock[ua.AchievementID] {
		// a concurrent request inserted the row after our read
		delete(f.db.raceUnlock, ua.AchievementID)
		f.db.unlocks[key] = *ua
		return false, nil
	}
	if _, ok := f.db.unlocks[key]; ok {
		return false, nil
	}
	ua.ID = f.db.id()
	f.db.unlocks[key] = *ua
	return true, nil
}

// noLocker lets tests exercise the ledger without per-user serialization.
type noLocker struct{}

func (noLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type fixture struct {
	db           *memDB
	now          time.Time
	achievements *AchievementService
	progress     *ProgressService
	courses      *CourseService
	auth         *AuthService
}

func newFixture(locker Locker) *fixture {
	db := newMemDB()
	f := &fixture{db: db, now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.achievements = NewAchievementService(fakeAchievements{db}, fakeUnlocks{db}, fakeUsers{db}, NewMemoryLeaderboardCache(time.Minute))
	f.achievements.Now = clock
	f.progress = NewProgressService(fakeCatalog{db}, fakeUsers{db}, fakeProgress{db}, f.achievements, locker)
	f.progress.Now = clock
	f.courses = NewCourseService(fakeCatalog{db}, fakeProgress{db}, nil)
	f.auth = newAuthService(db)
	f.auth.Now = clock
	return f
}

// register signs a user up at the fixture's current time.
func (f *fixture) register(t *testing.T, name string) *model.User {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return res.User
}

func intPtr(v int) *int { return &v }
