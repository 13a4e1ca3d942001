package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"auth-service/internal/domain"
	"auth-service/internal/repository"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*domain.User
	nextID    int64
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Init(context.Context) error { return nil }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return 0, repository.ErrDuplicate
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.byEmail[user.Email] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	records []domain.RefreshToken
	err     error
}

func (r *fakeTokenRepo) Init(context.Context) error { return nil }

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	token.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *token)
	return token.ID, nil
}

func (r *fakeTokenRepo) GetByID(_ context.Context, id int64) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			copied := r.records[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTokenRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("not implemented")
}
