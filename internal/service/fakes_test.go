package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
)

type fakeRequestRepo struct {
	byNumber map[int64]*domain.ServiceRequest
	history  []domain.StatusEntry
	stats    *domain.Statistics
	statsErr error
	nextID   int64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byNumber: map[int64]*domain.ServiceRequest{}}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *domain.ServiceRequest) error {
	var max int64
	for number := range f.byNumber {
		if number > max {
			max = number
		}
	}
	f.nextID++
	req.ID = f.nextID
	req.Number = max + 1
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	f.byNumber[req.Number] = &stored
	return nil
}

func (f *fakeRequestRepo) Insert(_ context.Context, req *domain.ServiceRequest) error {
	if _, exists := f.byNumber[req.Number]; exists {
		return pgx.ErrNoRows
	}
	f.nextID++
	req.ID = f.nextID
	req.UpdatedAt = time.Now()
	stored := *req
	f.byNumber[req.Number] = &stored
	return nil
}

func (f *fakeRequestRepo) GetByNumber(_ context.Context, number int64) (*domain.ServiceRequest, error) {
	stored, ok := f.byNumber[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for _, stored := range f.byNumber {
		if filter.ClientLogin != nil && stored.ClientLogin != *filter.ClientLogin {
			continue
		}
		if filter.TechnicianID != nil {
			if stored.TechnicianID == nil || *stored.TechnicianID != *filter.TechnicianID {
				continue
			}
		}
		if filter.SearchTerm != nil && !matchesSearch(stored, *filter.SearchTerm) {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

func matchesSearch(req *domain.ServiceRequest, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	fields := []string{
		strconv.FormatInt(req.Number, 10),
		req.ProblemDescription,
		req.ClientName,
		req.ClientPhone,
		req.EquipmentType,
		req.EquipmentModel,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (f *fakeRequestRepo) Update(_ context.Context, req *domain.ServiceRequest, entry *domain.StatusEntry) error {
	stored, ok := f.byNumber[req.Number]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := *req
	updated.UpdatedAt = time.Now()
	*stored = updated
	if entry != nil {
		appended := *entry
		appended.ID = int64(len(f.history) + 1)
		appended.ChangedAt = time.Now()
		f.history = append(f.history, appended)
	}
	return nil
}

func (f *fakeRequestRepo) Statistics(context.Context) (*domain.Statistics, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	copied := *f.stats
	return &copied, nil
}

type fakeTechnicianRepo struct {
	byID    map[int64]*domain.Technician
	byLogin map[string]*domain.Technician
	nextID  int64
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{
		byID:    map[int64]*domain.Technician{},
		byLogin: map[string]*domain.Technician{},
	}
}

func (f *fakeTechnicianRepo) Create(_ context.Context, tech *domain.Technician) error {
	if tech.Login != nil {
		if _, exists := f.byLogin[*tech.Login]; exists {
			return pgx.ErrNoRows
		}
	}
	f.nextID++
	tech.ID = f.nextID
	tech.CreatedAt = time.Now()
	stored := *tech
	f.byID[tech.ID] = &stored
	if tech.Login != nil {
		f.byLogin[*tech.Login] = &stored
	}
	return nil
}

func (f *fakeTechnicianRepo) GetByID(_ context.Context, id int64) (*domain.Technician, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeTechnicianRepo) GetByLogin(_ context.Context, login string) (*domain.Technician, error) {
	stored, ok := f.byLogin[login]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeTechnicianRepo) ListWithWorkload(context.Context) ([]domain.TechnicianWorkload, error) {
	var result []domain.TechnicianWorkload
	for _, stored := range f.byID {
		result = append(result, domain.TechnicianWorkload{Technician: *stored})
	}
	return result, nil
}

type fakeHistoryRepo struct {
	requests *fakeRequestRepo
}

func (f *fakeHistoryRepo) ListByRequest(_ context.Context, requestNumber int64) ([]domain.StatusEntry, error) {
	var result []domain.StatusEntry
	for _, entry := range f.requests.history {
		if entry.RequestNumber == requestNumber {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	byLogin map[string]*domain.User
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byLogin: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := f.byLogin[user.Login]; exists {
		return pgx.ErrNoRows
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	stored := *user
	f.byLogin[user.Login] = &stored
	return nil
}

func (f *fakeUserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	stored, ok := f.byLogin[login]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeUserRepo) Count(context.Context) (int64, error) {
	return int64(len(f.byLogin)), nil
}
