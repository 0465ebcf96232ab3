package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pixgateway"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

const (
	DefaultIdleLabel = "Gerar Pix"
	BusyLabel        = "Gerando Pix..."

	attemptPrimary  = "primary"
	attemptFallback = "fallback"

	outcomeSuccess    = "success"
	outcomeFailed     = "failed"
	outcomeIncomplete = "incomplete"
	outcomeInvalid    = "invalid"
)

type charger interface {
	CreateCharge(ctx context.Context, req pixgateway.ChargeRequest) (*pixgateway.ChargeResult, error)
}

type pipelineMetrics interface {
	ObserveCharge(attempt, outcome string, took time.Duration)
	IncSubmission(outcome string)
}

// Options tunes the pipeline.
type Options struct {
	// FallbackTaxID, when set, is retried once in place of a rejected tax id.
	FallbackTaxID string
	// Description overrides the base product name sent as the charge description.
	Description string
	// IdleLabel is the pay control label outside of a submission.
	IdleLabel string
}

// Result is a successful submission.
type Result struct {
	Charge            types.PixCharge
	Request           pixgateway.ChargeRequest
	Summary           types.OrderSummary
	Attempts          int
	UsedFallbackTaxID bool
}

// Pipeline validates a submission and creates the pix charge, retrying at most once
// with the fallback tax id.
type Pipeline struct {
	charger charger
	opts    Options
	metrics pipelineMetrics
	logg    *logger.Logger

	mu        sync.Mutex
	status    Status
	label     string
	message   string
	observers []Observer
}

// PipelineOption configures optional collaborators.
type PipelineOption func(*Pipeline)

func WithMetrics(m pipelineMetrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

func WithLogger(logg *logger.Logger) PipelineOption {
	return func(p *Pipeline) { p.logg = logg }
}

// NewPipeline builds an idle pipeline over the charge client.
func NewPipeline(client charger, opts Options, extra ...PipelineOption) (*Pipeline, error) {
	if client == nil {
		return nil, fmt.Errorf("pix charger required")
	}
	if strings.TrimSpace(opts.IdleLabel) == "" {
		opts.IdleLabel = DefaultIdleLabel
	}
	opts.FallbackTaxID = strings.TrimSpace(opts.FallbackTaxID)
	p := &Pipeline{charger: client, opts: opts, status: StatusIdle, label: opts.IdleLabel}
	for _, opt := range extra {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Subscribe registers an observer for every subsequent transition.
func (p *Pipeline) Subscribe(o Observer) {
	if o == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

// Status returns the current step.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Label returns the pay control label.
func (p *Pipeline) Label() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.label
}

// Message returns the last user-facing error, empty after a success.
func (p *Pipeline) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

// Submit runs one submission. A second call while one is in flight fails with CodeConflict.
// Validation failures return CodeValidation before any network call. The pipeline is back
// to Idle when Submit returns.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (*Result, error) {
	p.mu.Lock()
	if p.status != StatusIdle {
		p.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "submission already in progress")
	}
	p.status = StatusValidating
	p.message = ""
	p.mu.Unlock()
	p.emit(Event{Status: StatusValidating, Label: p.opts.IdleLabel})

	if err := Validate(sub); err != nil {
		p.count(outcomeInvalid)
		p.finish(StatusIdle, pkgerrors.As(err).Message(), 0)
		return nil, err
	}

	req := BuildChargeRequest(sub, p.opts.Description)
	p.transition(StatusSubmitting, BusyLabel, "", 1)

	result, err := p.attempt(ctx, attemptPrimary, req)
	attempts := 1
	usedFallback := false
	var firstErr error
	if err != nil && p.fallbackEligible(req) {
		firstErr = err
		if p.logg != nil {
			p.logg.Warn(p.logg.WithFields(ctx, map[string]any{
				"error":   firstErr.Error(),
				"attempt": attemptFallback,
			}), "checkout.charge.retry")
		}
		attempts = 2
		usedFallback = true
		req = req.WithTaxID(p.opts.FallbackTaxID)
		p.emit(Event{Status: StatusSubmitting, Label: BusyLabel, Busy: true, Attempt: attempts})
		result, err = p.attempt(ctx, attemptFallback, req)
	}

	if err != nil {
		msg := failureMessage(err, firstErr)
		p.count(outcomeFailed)
		p.transition(StatusFailed, p.opts.IdleLabel, msg, attempts)
		p.finish(StatusIdle, msg, attempts)
		return nil, err
	}

	p.count(outcomeSuccess)
	p.transition(StatusSuccess, p.opts.IdleLabel, "", attempts)
	p.finish(StatusIdle, "", attempts)

	summary := sub.Summary().Snapshot(sub.Selection.PaymentMethod.String())
	return &Result{
		Charge:            types.PixCharge{QRCode: result.PixQRCode, Code: result.PixCode},
		Request:           req,
		Summary:           summary,
		Attempts:          attempts,
		UsedFallbackTaxID: usedFallback,
	}, nil
}

func (p *Pipeline) attempt(ctx context.Context, name string, req pixgateway.ChargeRequest) (*pixgateway.ChargeResult, error) {
	started := time.Now()
	result, err := p.charger.CreateCharge(ctx, req)
	switch {
	case err != nil:
		p.observe(name, outcomeFailed, time.Since(started))
		return nil, err
	case result == nil || !result.Complete():
		p.observe(name, outcomeIncomplete, time.Since(started))
		return nil, pkgerrors.New(pkgerrors.CodePaymentFailed, pixgateway.MessageRejected)
	}
	p.observe(name, outcomeSuccess, time.Since(started))
	return result, nil
}

func (p *Pipeline) fallbackEligible(req pixgateway.ChargeRequest) bool {
	return p.opts.FallbackTaxID != "" && req.Customer.TaxID != p.opts.FallbackTaxID
}

// failureMessage picks the first non-empty coded message among errs, else the generic rejection.
func failureMessage(errs ...error) string {
	for _, err := range errs {
		if typed := pkgerrors.As(err); typed != nil {
			if msg := strings.TrimSpace(typed.Message()); msg != "" {
				return msg
			}
		}
	}
	return pixgateway.MessageRejected
}

func (p *Pipeline) transition(status Status, label, message string, attempt int) {
	p.mu.Lock()
	p.status = status
	p.label = label
	p.message = message
	p.mu.Unlock()
	p.emit(Event{Status: status, Label: label, Busy: status == StatusSubmitting, Message: message, Attempt: attempt})
}

func (p *Pipeline) finish(status Status, message string, attempt int) {
	p.transition(status, p.opts.IdleLabel, message, attempt)
}

func (p *Pipeline) emit(e Event) {
	p.mu.Lock()
	observers := append([]Observer(nil), p.observers...)
	p.mu.Unlock()
	for _, o := range observers {
		o.OnCheckoutChange(e)
	}
}

func (p *Pipeline) observe(attempt, outcome string, took time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveCharge(attempt, outcome, took)
	}
}

func (p *Pipeline) count(outcome string) {
	if p.metrics != nil {
		p.metrics.IncSubmission(outcome)
	}
}
