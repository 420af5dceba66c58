package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"sync"

	"thermacore/internal/core/domain"
	"thermacore/internal/core/events"
	"thermacore/internal/core/port"
	"thermacore/internal/metrics"

	"go.uber.org/zap"
)

const SETTINGS_KEY = "thermacore-settings"

// SettingsStore owns the process wide settings. Every mutation is applied
// atomically in memory and then written back to the key-value store.
type SettingsStore struct {
	mu            sync.Mutex
	settings      domain.Settings
	defaultVolume int
	kv            port.KeyValueStore
	key           string
	events        port.EventPublisher
	metrics       metrics.Recorder
	logger        *zap.Logger
}

type SettingsStoreOption func(*SettingsStore)

func WithSettingsKey(key string) SettingsStoreOption {
	return func(s *SettingsStore) {
		s.key = key
	}
}

// WithDefaultVolume changes the initial volume and the fallback used when
// unmuting with no remembered volume.
func WithDefaultVolume(volume int) SettingsStoreOption {
	return func(s *SettingsStore) {
		s.defaultVolume = clampVolume(volume)
		s.settings.Volume = s.defaultVolume
		s.settings.PrevVolume = s.defaultVolume
	}
}

func WithSettingsEvents(events port.EventPublisher) SettingsStoreOption {
	return func(s *SettingsStore) {
		s.events = events
	}
}

func WithSettingsMetrics(recorder metrics.Recorder) SettingsStoreOption {
	return func(s *SettingsStore) {
		s.metrics = metrics.OrNoop(recorder)
	}
}

func NewSettingsStore(kv port.KeyValueStore, logger *zap.Logger, opts ...SettingsStoreOption) *SettingsStore {
	s := &SettingsStore{
		settings:      domain.DefaultSettings(),
		defaultVolume: domain.DEFAULT_VOLUME,
		kv:            kv,
		key:           SETTINGS_KEY,
		metrics:       metrics.NoopRecorder{},
		logger:        logger.With(zap.String("component", "settings")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate reads the persisted record once and merges it over the current
// defaults. Missing or malformed records keep the defaults.
func (s *SettingsStore) Hydrate(ctx context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn("settings@hydrate: could not read settings, using defaults", zap.Error(err))
		}
		return s.settings
	}

	merged := s.settings
	if err := json.Unmarshal(raw, &merged); err != nil {
		s.logger.Error("settings@hydrate: malformed settings record, using defaults", zap.Error(err))
		return s.settings
	}
	s.settings = s.sanitize(merged)
	s.logger.Debug("settings@hydrate: loaded", zap.Any("settings", s.settings))
	s.publish()
	return s.settings
}

// sanitize repairs values that fall outside their domain in older or hand
// edited records.
func (s *SettingsStore) sanitize(st domain.Settings) domain.Settings {
	st.Volume = clampVolume(st.Volume)
	st.PrevVolume = clampVolume(st.PrevVolume)
	if !st.TemperatureUnit.Valid() {
		s.logger.Warn("settings@hydrate: unknown temperature unit, using default", zap.String("unit", string(st.TemperatureUnit)))
		st.TemperatureUnit = domain.CELSIUS
	}
	return st
}

func (s *SettingsStore) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetVolume clamps v to [0, 100]. Zero mutes an enabled store, a positive
// value unmutes a disabled one and becomes the remembered volume.
func (s *SettingsStore) SetVolume(ctx context.Context, v int) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if clamped := clampVolume(v); clamped != v {
		s.logger.Warn("settings@setVolume: volume out of range, clamped", zap.Int("requested", v), zap.Int("volume", clamped))
		v = clamped
	}

	next := s.settings
	next.Volume = v
	if v == 0 && next.SoundEnabled {
		next.SoundEnabled = false
	} else if v > 0 && !next.SoundEnabled {
		next.SoundEnabled = true
	}
	if v > 0 {
		next.PrevVolume = v
	}
	return s.commit(ctx, next)
}

// ToggleSound mutes or unmutes. Muting keeps the stored volume, so the
// effective volume drops to zero and the stored one is restored on unmute.
func (s *SettingsStore) ToggleSound(ctx context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if next.SoundEnabled {
		if next.Volume > 0 {
			next.PrevVolume = next.Volume
		}
		next.SoundEnabled = false
	} else {
		next.SoundEnabled = true
		if next.Volume == 0 {
			next.Volume = next.PrevVolume
			if next.Volume == 0 {
				next.Volume = s.defaultVolume
			}
		}
	}
	return s.commit(ctx, next)
}

func (s *SettingsStore) EffectiveVolume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return effectiveVolume(s.settings)
}

// NormalizedVolume is the effective volume as a gain in [0, 1].
func (s *SettingsStore) NormalizedVolume() float64 {
	return NormalizeVolume(s.EffectiveVolume())
}

func (s *SettingsStore) SetTemperatureUnit(ctx context.Context, unit domain.TemperatureUnit) (domain.Settings, error) {
	if !unit.Valid() {
		return s.Settings(), domain.ErrInvalidTemperatureUnit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	next.TemperatureUnit = unit
	return s.commit(ctx, next), nil
}

func (s *SettingsStore) ToggleTemperatureUnit(ctx context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	next.TemperatureUnit = next.TemperatureUnit.Toggle()
	return s.commit(ctx, next)
}

func (s *SettingsStore) ConvertTemperature(celsius float64) float64 {
	return ConvertTemperature(s.Settings().TemperatureUnit, celsius)
}

func (s *SettingsStore) FormatTemperature(celsius *float64, withUnit bool) string {
	return FormatTemperature(s.Settings().TemperatureUnit, celsius, withUnit)
}

func (s *SettingsStore) commit(ctx context.Context, next domain.Settings) domain.Settings {
	s.settings = next
	s.persist(ctx)
	s.publish()
	return s.settings
}

// persist is best effort: a failed write is logged and the in-memory state stays.
func (s *SettingsStore) persist(ctx context.Context) {
	raw, err := json.Marshal(s.settings)
	if err != nil {
		s.logger.Error("settings@persist: marshal", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.metrics.IncPersistFailure(s.key)
		s.logger.Error("settings@persist: could not write settings", zap.Error(err))
	}
}

func (s *SettingsStore) publish() {
	if s.events == nil {
		return
	}
	for _, ev := range events.SettingsUpdateEvents(s.settings) {
		s.events.Publish(ev)
	}
}

func effectiveVolume(st domain.Settings) int {
	if !st.SoundEnabled {
		return 0
	}
	return st.Volume
}

func clampVolume(v int) int {
	return max(domain.MIN_VOLUME, min(domain.MAX_VOLUME, v))
}

// NormalizeVolume maps a 0-100 volume to a 0.0-1.0 gain.
func NormalizeVolume(v int) float64 {
	return float64(clampVolume(v)) / 100
}

func ConvertTemperature(unit domain.TemperatureUnit, celsius float64) float64 {
	if unit == domain.FAHRENHEIT {
		return celsius*9/5 + 32
	}
	return celsius
}

// ToCelsius is the inverse of ConvertTemperature.
func ToCelsius(unit domain.TemperatureUnit, value float64) float64 {
	if unit == domain.FAHRENHEIT {
		return (value - 32) * 5 / 9
	}
	return value
}

// FormatTemperature renders celsius in unit rounded to one decimal
// (half away from zero). A nil reading renders as "N/A".
func FormatTemperature(unit domain.TemperatureUnit, celsius *float64, withUnit bool) string {
	if celsius == nil {
		return "N/A"
	}
	rounded := math.Round(ConvertTemperature(unit, *celsius)*10) / 10
	if rounded == 0 {
		// avoid "-0"
		rounded = 0
	}
	value := strconv.FormatFloat(rounded, 'f', -1, 64)
	if withUnit {
		return value + unit.Symbol()
	}
	return value
}
