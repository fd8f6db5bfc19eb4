package service

import (
	"context"
	"errors"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"gorm.io/gorm"
)

type memUsers struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]entity.User)}
}

func (m *memUsers) Create(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	m.users[user.ID] = *user
	return user, nil
}

func (m *memUsers) Get(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *memUsers) Update(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return user, nil
}

func (m *memUsers) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memUsers) GetWithPagination(_ context.Context, offset, limit int, _ string) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.User
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCodes struct {
	mu    sync.Mutex
	codes []entity.QRCode
	now   time.Time
}

func (m *memCodes) Create(_ context.Context, code *entity.QRCode) (*entity.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code.ID = uuid.New().String()
	m.now = m.now.Add(time.Second)
	code.CreatedAt = m.now
	m.codes = append(m.codes, *code)
	return code, nil
}

func (m *memCodes) Get(_ context.Context, userID int64, id string) (*entity.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == id && c.UserID == userID {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCodes) SetFileID(_ context.Context, id, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.codes {
		if m.codes[i].ID == id {
			m.codes[i].FileID = fileID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memCodes) GetByUserID(_ context.Context, userID int64, limit int) ([]entity.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.QRCode
	for i := len(m.codes) - 1; i >= 0 && len(out) < limit; i-- {
		if m.codes[i].UserID == userID {
			out = append(out, m.codes[i])
		}
	}
	return out, nil
}

func (m *memCodes) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.codes)), nil
}

func (m *memCodes) CountSince(_ context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.codes {
		if !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type memCache struct {
	mu      sync.Mutex
	renders map[string][]byte
	last    map[int64]string
	gets    int
}

func newMemCache() *memCache {
	return &memCache{renders: make(map[string][]byte), last: make(map[int64]string)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	png, ok := m.renders[key]
	return png, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, png []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders[key] = png
	return nil
}

func (m *memCache) SetLast(_ context.Context, userID int64, key string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[userID] = key
	return nil
}

func (m *memCache) Last(_ context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[userID], nil
}

type stubLogos struct {
	img   image.Image
	calls []logo.Logo
}

func (s *stubLogos) Load(l logo.Logo) (image.Image, error) {
	s.calls = append(s.calls, l)
	if s.img == nil {
		return nil, errors.New("no such file")
	}
	return s.img, nil
}
