package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

// sentText captures one SendText call.
type sentText struct {
	To   string
	Body string
}

// messengerStub records every outbound call in memory.
type messengerStub struct {
	mu      sync.Mutex
	Texts   []sentText
	Lists   []string // body of each SendList
	Buttons []string // body of each SendButtons
	Marked  []string
	TextErr error
}

func (m *messengerStub) SendText(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TextErr != nil {
		return m.TextErr
	}
	m.Texts = append(m.Texts, sentText{To: to, Body: body})
	return nil
}

func (m *messengerStub) SendButtons(_ context.Context, _, body string, _ []ports.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Buttons = append(m.Buttons, body)
	return nil
}

func (m *messengerStub) SendList(_ context.Context, _, body, _ string, _ []ports.ListSection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lists = append(m.Lists, body)
	return nil
}

func (m *messengerStub) MarkRead(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Marked = append(m.Marked, messageID)
	return nil
}

func (m *messengerStub) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Texts) == 0 {
		return ""
	}
	return m.Texts[len(m.Texts)-1].Body
}

// otpRepoStub is an in-memory ports.OTPRepository.
type otpRepoStub struct {
	records map[string]*domain.OTPCode
}

func newOTPRepoStub() *otpRepoStub {
	return &otpRepoStub{records: make(map[string]*domain.OTPCode)}
}

func (r *otpRepoStub) Get(_ context.Context, phone string) (*domain.OTPCode, error) {
	rec, ok := r.records[phone]
	if !ok {
		return nil, domain.ErrOTPNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *otpRepoStub) Put(_ context.Context, code *domain.OTPCode) error {
	cp := *code
	r.records[code.Phone] = &cp
	return nil
}

func (r *otpRepoStub) Delete(_ context.Context, phone string) error {
	delete(r.records, phone)
	return nil
}

func (r *otpRepoStub) IncrementAttempts(_ context.Context, phone string) (int, error) {
	rec, ok := r.records[phone]
	if !ok {
		return 0, domain.ErrOTPNotFound
	}
	rec.Attempts++
	return rec.Attempts, nil
}

// userRepoStub is an in-memory ports.UserRepository.
type userRepoStub struct {
	users   map[string]*domain.User
	findErr error
	nextID  int
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]*domain.User)}
}

func (r *userRepoStub) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[phone]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepoStub) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.nextID++
	cp := *user
	cp.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[user.Phone] = &cp
	out := cp
	return &out, nil
}

func (r *userRepoStub) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.Phone]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *user
	r.users[user.Phone] = &cp
	return nil
}

// sessionStoreStub is an in-memory ports.SessionStore.
type sessionStoreStub struct {
	sessions map[string]*domain.Session
	getErr   error
	saveErr  error
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]*domain.Session)}
}

func (s *sessionStoreStub) Get(_ context.Context, phone string) (*domain.Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	sess, ok := s.sessions[phone]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *sessionStoreStub) Save(_ context.Context, session *domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *session
	s.sessions[session.Phone] = &cp
	return nil
}

func (s *sessionStoreStub) Clear(_ context.Context, phone string) error {
	delete(s.sessions, phone)
	return nil
}

// recordRepoStub is an in-memory ports.RecordRepository.
type recordRepoStub struct {
	activities []*domain.ActivityLog
	materials  []*domain.MaterialRequest
	bookings   []*domain.Booking
	insertErr  error
	nextID     int
}

func (r *recordRepoStub) id() string {
	r.nextID++
	return fmt.Sprintf("65f0c0de%08d", r.nextID)
}

func (r *recordRepoStub) InsertActivity(_ context.Context, a *domain.ActivityLog) (string, error) {
	if r.insertErr != nil {
		return "", r.insertErr
	}
	cp := *a
	r.activities = append(r.activities, &cp)
	return r.id(), nil
}

func (r *recordRepoStub) InsertMaterialRequest(_ context.Context, m *domain.MaterialRequest) (string, error) {
	if r.insertErr != nil {
		return "", r.insertErr
	}
	cp := *m
	r.materials = append(r.materials, &cp)
	return r.id(), nil
}

func (r *recordRepoStub) InsertBooking(_ context.Context, b *domain.Booking) (string, error) {
	if r.insertErr != nil {
		return "", r.insertErr
	}
	cp := *b
	r.bookings = append(r.bookings, &cp)
	return r.id(), nil
}

func (r *recordRepoStub) RecentActivities(_ context.Context, phone string, limit int) ([]*domain.ActivityLog, error) {
	out := make([]*domain.ActivityLog, 0, limit)
	for _, a := range r.activities {
		if a.Phone == phone && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *recordRepoStub) RecentMaterialRequests(_ context.Context, phone string, limit int) ([]*domain.MaterialRequest, error) {
	out := make([]*domain.MaterialRequest, 0, limit)
	for _, m := range r.materials {
		if m.Phone == phone && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

// siteRepoStub serves a fixed site catalog.
type siteRepoStub struct {
	sites   []*domain.Site
	listErr error
}

func (r *siteRepoStub) ListActive(_ context.Context) ([]*domain.Site, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sites, nil
}

// messageLogStub records audit inserts.
type messageLogStub struct {
	entries []*domain.MessageLog
}

func (r *messageLogStub) Insert(_ context.Context, m *domain.MessageLog) error {
	cp := *m
	r.entries = append(r.entries, &cp)
	return nil
}

// mediaFetcherStub returns canned bytes for any media id.
type mediaFetcherStub struct {
	data []byte
	mime string
	err  error
}

func (f *mediaFetcherStub) FetchMedia(_ context.Context, _ string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.mime, nil
}

// imageStoreStub records uploads and fabricates refs.
type imageStoreStub struct {
	uploads []string // filenames
	err     error
}

func (s *imageStoreStub) Upload(_ context.Context, _ []byte, filename, _, namespace string) (*domain.ImageRef, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploads = append(s.uploads, filename)
	key := namespace + "/" + filename
	return &domain.ImageRef{URL: "http://localhost/files/" + key, Key: key}, nil
}
