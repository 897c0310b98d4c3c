package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/storage"
)

// fakeRemote is an in-memory Remote. Set the err fields to make calls fail
// and block to hold updates until it is closed.
type fakeRemote struct {
	mu sync.Mutex

	fidelity *models.FidelityBonusConfig
	topSigma *models.TopSigmaConfig
	sigma    *models.SigmaSettings
	rules    *models.CareerRules
	pins     []models.PinLevel
	nextID   int

	getErr    error
	updateErr error
	// createErr fails CreatePinLevel for the named PINs.
	createErr map[string]error

	// block, when set, holds every update until it is closed. started
	// receives one value per blocked update.
	block   chan struct{}
	started chan struct{}

	gets    int
	updates int
	created []models.PinLevel
	updated []models.PinLevel
	deleted []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{}
}

func (f *fakeRemote) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	return f.getErr
}

func (f *fakeRemote) update() error {
	f.mu.Lock()
	block, started := f.block, f.started
	f.updates++
	err := f.updateErr
	f.mu.Unlock()

	if block != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-block
	}
	return err
}

func (f *fakeRemote) counts() (gets, updates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, f.updates
}

func (f *fakeRemote) GetFidelityBonusConfig(context.Context) (*models.FidelityBonusConfig, error) {
	if err := f.get(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fidelity == nil {
		cfg := models.DefaultFidelityBonusConfig()
		return &cfg, nil
	}
	cfg := *f.fidelity
	return &cfg, nil
}

func (f *fakeRemote) UpdateFidelityBonusConfig(_ context.Context, cfg *models.FidelityBonusConfig) (*models.FidelityBonusConfig, error) {
	if err := f.update(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *cfg
	f.fidelity = &saved
	return cfg, nil
}

func (f *fakeRemote) GetTopSigmaConfig(context.Context) (*models.TopSigmaConfig, error) {
	if err := f.get(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topSigma == nil {
		cfg := models.DefaultTopSigmaConfig()
		return &cfg, nil
	}
	cfg := *f.topSigma
	return &cfg, nil
}

func (f *fakeRemote) UpdateTopSigmaConfig(_ context.Context, cfg *models.TopSigmaConfig) (*models.TopSigmaConfig, error) {
	if err := f.update(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *cfg
	f.topSigma = &saved
	return cfg, nil
}

func (f *fakeRemote) GetSigmaSettings(context.Context) (*models.SigmaSettings, error) {
	if err := f.get(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sigma == nil {
		s := models.DefaultSigmaSettings()
		return &s, nil
	}
	s := *f.sigma
	return &s, nil
}

func (f *fakeRemote) UpdateSigmaSettings(_ context.Context, s *models.SigmaSettings) (*models.SigmaSettings, error) {
	if err := f.update(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *s
	f.sigma = &saved
	return s, nil
}

func (f *fakeRemote) GetCareerRules(context.Context) (*models.CareerRules, error) {
	if err := f.get(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rules == nil {
		r := models.DefaultCareerRules()
		return &r, nil
	}
	r := *f.rules
	return &r, nil
}

func (f *fakeRemote) UpdateCareerRules(_ context.Context, r *models.CareerRules) (*models.CareerRules, error) {
	if err := f.update(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *r
	f.rules = &saved
	return r, nil
}

func (f *fakeRemote) ListPinLevels(context.Context) ([]models.PinLevel, error) {
	if err := f.get(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PinLevel(nil), f.pins...), nil
}

func (f *fakeRemote) CreatePinLevel(_ context.Context, level *models.PinLevel) (*models.PinLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if err := f.createErr[level.Name]; err != nil {
		return nil, err
	}
	f.nextID++
	saved := *level
	saved.ID = fmt.Sprintf("pin-%d", f.nextID)
	f.pins = append(f.pins, saved)
	f.created = append(f.created, saved)
	return &saved, nil
}

func (f *fakeRemote) UpdatePinLevel(_ context.Context, level *models.PinLevel) (*models.PinLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.pins {
		if f.pins[i].ID == level.ID {
			f.pins[i] = *level
			f.updated = append(f.updated, *level)
			return level, nil
		}
	}
	return nil, fmt.Errorf("pin %s: %w", level.ID, storage.ErrNotFound)
}

func (f *fakeRemote) DeletePinLevel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.pins {
		if f.pins[i].ID == id {
			f.pins = append(f.pins[:i], f.pins[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return fmt.Errorf("pin %s: %w", id, storage.ErrNotFound)
}

// fakeClock is a Clock moved by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
