package address

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/redis"
	"github.com/angelmondragon/pixfunnel-backend/pkg/viacep"
)

const (
	cacheKind       = "cep"
	maxNegativeTTL  = time.Hour
	outcomeHit      = "cache_hit"
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// Result is a resolved postal code.
type Result struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Complete reports whether street, city and state are all present.
func (r Result) Complete() bool {
	return strings.TrimSpace(r.Street) != "" && strings.TrimSpace(r.City) != "" && strings.TrimSpace(r.State) != ""
}

// Service resolves postal codes. Errors are coded: CodeValidation for malformed input,
// CodeNotFound for unknown codes and CodeDependency for transport failures.
type Service interface {
	Lookup(ctx context.Context, cep string) (Result, error)
}

type lookupClient interface {
	Lookup(ctx context.Context, cep string) (*viacep.Address, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(kind string, parts ...string) string
}

type lookupMetrics interface {
	IncCEPLookup(outcome string)
}

type cachedEntry struct {
	NotFound bool    `json:"not_found,omitempty"`
	Result   *Result `json:"result,omitempty"`
}

type service struct {
	client   lookupClient
	cache    cacheStore
	cacheTTL time.Duration
	metrics  lookupMetrics
	logg     *logger.Logger
}

// ServiceOption configures the lookup service.
type ServiceOption func(*service)

// WithCache stores lookups for ttl. Unknown codes are cached for at most an hour.
func WithCache(cache cacheStore, ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithMetrics(m lookupMetrics) ServiceOption {
	return func(s *service) { s.metrics = m }
}

func WithLogger(logg *logger.Logger) ServiceOption {
	return func(s *service) { s.logg = logg }
}

// NewService builds the postal lookup service over a ViaCEP client.
func NewService(client lookupClient, opts ...ServiceOption) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("viacep client required")
	}
	s := &service{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *service) Lookup(ctx context.Context, raw string) (Result, error) {
	cep := NormalizeCEP(raw)
	if len(cep) != CEPLength {
		s.count(outcomeInvalid)
		return Result{}, errors.New(errors.CodeValidation, MessageInvalidCEP)
	}

	if entry, ok := s.fromCache(ctx, cep); ok {
		s.count(outcomeHit)
		if entry.NotFound || entry.Result == nil {
			return Result{}, errors.New(errors.CodeNotFound, MessageCEPNotFound)
		}
		return *entry.Result, nil
	}

	addr, err := s.client.Lookup(ctx, cep)
	if err != nil {
		switch {
		case errors.Is(err, errors.CodeNotFound), errors.Is(err, errors.CodeValidation):
			s.count(outcomeNotFound)
			s.store(ctx, cep, cachedEntry{NotFound: true})
			return Result{}, errors.Wrap(errors.CodeNotFound, err, MessageCEPNotFound)
		default:
			s.count(outcomeError)
			if s.logg != nil {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cep": cep, "error": err.Error()}), "cep.lookup.failed")
			}
			return Result{}, errors.Wrap(errors.CodeDependency, err, MessageCEPNotFound)
		}
	}

	result := Result{
		CEP:          cep,
		Street:       addr.Street,
		Neighborhood: addr.Neighborhood,
		City:         addr.City,
		State:        addr.State,
	}
	s.count(outcomeFound)
	s.store(ctx, cep, cachedEntry{Result: &result})
	return result, nil
}

func (s *service) fromCache(ctx context.Context, cep string) (cachedEntry, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return cachedEntry{}, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheKind, cep))
	if err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cep.cache.read_failed")
		}
		return cachedEntry{}, false
	}
	var entry cachedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return cachedEntry{}, false
	}
	return entry, true
}

func (s *service) store(ctx context.Context, cep string, entry cachedEntry) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	ttl := s.cacheTTL
	if entry.NotFound && ttl > maxNegativeTTL {
		ttl = maxNegativeTTL
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(cacheKind, cep), string(payload), ttl); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cep.cache.write_failed")
	}
}

func (s *service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncCEPLookup(outcome)
	}
}
