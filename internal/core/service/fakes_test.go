package service

import (
	"context"
	"errors"
	"sync"

	"thermacore/internal/core/domain"
)

var errStorageDown = errors.New("storage down")

type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	writes  int
	failGet bool
	failSet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errStorageDown
	}
	v, ok := f.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errStorageDown
	}
	f.writes++
	f.data[key] = value
	return nil
}

type fakePublisher struct {
	events []any
}

func (p *fakePublisher) Publish(evt interface{}) {
	p.events = append(p.events, evt)
}

type fakeUnitService struct {
	units   []domain.Unit
	failErr error
	calls   int
}

func (s *fakeUnitService) GetUnits(context.Context) ([]domain.Unit, error) {
	return s.units, s.failErr
}

func (s *fakeUnitService) GetUnit(_ context.Context, unitId string) (*domain.Unit, error) {
	for _, u := range s.units {
		if u.Id == unitId {
			return &u, nil
		}
	}
	return nil, domain.ErrUnitNotFound
}

func (s *fakeUnitService) UpdateUnitName(context.Context, string, string) error {
	s.calls++
	return s.failErr
}

func (s *fakeUnitService) UpdateUnitLocation(context.Context, string, string) error {
	s.calls++
	return s.failErr
}

func (s *fakeUnitService) UpdateUnitGPS(context.Context, string, domain.GPS) error {
	s.calls++
	return s.failErr
}
