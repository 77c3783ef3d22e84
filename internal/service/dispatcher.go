// README: Per-turn dispatch pipeline: dedup, NLU, resolution, urgency, scheduling, pricing, reply.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"dispatch/internal/ai"
	"dispatch/internal/circuit"
	"dispatch/internal/metrics"
	"dispatch/internal/modules/conversation"
	"dispatch/internal/modules/dedup"
	"dispatch/internal/modules/geo"
	"dispatch/internal/modules/pricing"
	"dispatch/internal/modules/profile"
	"dispatch/internal/modules/schedule"
	"dispatch/internal/modules/urgency"
	"dispatch/internal/types"
)

// lowJobConfidence is the threshold under which a diagnostic visit is
// quoted instead of a specific estimate.
const lowJobConfidence = 0.4

// Dispatcher wires the whole per-turn pipeline. It is safe for concurrent
// use; all mutable state lives in the dedup store and breaker registry.
type Dispatcher struct {
	extractor    *ai.Extractor
	rules        *ai.RuleExtractor
	resolver     *geo.Resolver
	engine       *schedule.Engine
	classifier   *urgency.Classifier
	orchestrator *conversation.Orchestrator
	dedup        dedup.Store
	breakers     *circuit.Registry
	logger       *slog.Logger
	deadline     time.Duration
}

type Deps struct {
	Extractor *ai.Extractor
	Resolver  *geo.Resolver
	Engine    *schedule.Engine
	Dedup     dedup.Store
	Breakers  *circuit.Registry
	Logger    *slog.Logger
	Deadline  time.Duration
}

func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{
		extractor:    deps.Extractor,
		rules:        ai.NewRuleExtractor(),
		resolver:     deps.Resolver,
		engine:       deps.Engine,
		classifier:   urgency.NewClassifier(),
		orchestrator: conversation.NewOrchestrator(),
		dedup:        deps.Dedup,
		breakers:     deps.Breakers,
		logger:       deps.Logger,
		deadline:     deps.Deadline,
	}
}

// Process runs one turn and always produces a decision for valid input.
// The returned bytes are the canonical serialized decision: replays of the
// same conversation_sid get them back verbatim.
func (d *Dispatcher) Process(ctx context.Context, req *DispatchRequest) ([]byte, error) {
	started := time.Now()
	defer func() {
		metrics.TurnDuration.Observe(time.Since(started).Seconds())
		d.publishBreakerStates()
	}()

	if prior, replay, err := d.dedup.Begin(ctx, req.ConversationSID); err == nil && replay {
		metrics.DedupHitsTotal.Inc()
		return prior, nil
	} else if err != nil {
		d.logger.Warn("dedup backend unavailable, processing anyway", "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	p := &req.Profile
	loc := p.Location()
	nowLocal := req.CurrentTime.In(loc)
	trade := string(p.Trade)

	// NLU and the early geocode race: the regex candidate is available
	// before the LLM answers, so its resolution starts immediately.
	var ex *ai.Extraction
	var early *geo.ResolvedAddress
	candidate := d.rules.Extract(req.CurrentMessage, trade).AddressText

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ex = d.extractor.Extract(gctx, req.CurrentMessage, req.History, trade, req.CurrentTime)
		return nil
	})
	if candidate != "" {
		g.Go(func() error {
			early, _ = d.resolver.Resolve(gctx, candidate, p.Anchor.Point(), p.ServiceRadiusMiles)
			return nil
		})
	}
	_ = g.Wait()

	d.mergeHistory(ex, req.History, trade)

	resolved, resolveReason := d.resolveAddress(ctx, ex, candidate, early, p)

	urg := d.classifier.Classify(customerText(req), ex, nowLocal, p)

	job := d.pickEstimate(ex, p)

	var schedResult *schedule.Result
	var noSlot *schedule.NoFeasibleSlot
	if ex.JobType != "" && resolved != nil && resolved.Geocoded {
		schedResult, noSlot = d.engine.FindSlot(ctx, schedule.Request{
			Profile:            p,
			Calendar:           req.Calendar,
			Now:                req.CurrentTime,
			Address:            resolved,
			Job:                job,
			Urgency:            urg.Urgency,
			IsEmergency:        urg.IsEmergency,
			AfterHoursEligible: urg.AfterHoursEligible,
		})
		if schedResult != nil {
			if err := d.priceSlots(schedResult, job, urg, p, loc); err != nil {
				noSlot = &schedule.NoFeasibleSlot{Reasons: []string{schedule.ReasonOutsideBusinessHours}}
				schedResult = nil
			}
		}
	}

	decision := d.orchestrator.Decide(conversation.Input{
		Profile:       p,
		History:       req.History,
		Message:       req.CurrentMessage,
		NowLocal:      nowLocal,
		Extraction:    ex,
		Resolved:      resolved,
		ResolveReason: resolveReason,
		Urgency:       urg,
		Schedule:      schedResult,
		NoSlot:        noSlot,
	})

	body, err := json.Marshal(decision)
	if err != nil {
		return nil, fmt.Errorf("marshal decision: %w", err)
	}
	if err := d.dedup.Record(ctx, req.ConversationSID, body); err != nil {
		d.logger.Warn("failed to record decision for dedup", "error", err)
	}
	metrics.DecisionsTotal.WithLabelValues(string(decision.NextAction)).Inc()
	return body, nil
}

// mergeHistory backfills job, address, and urgency from prior customer
// turns so a bare "YES" or "Stuff is wet" still carries the conversation's
// accumulated facts.
func (d *Dispatcher) mergeHistory(ex *ai.Extraction, history []types.Turn, trade string) {
	for i := len(history) - 1; i >= 0; i-- {
		t := history[i]
		if t.Sender != types.SenderCustomer {
			continue
		}
		prior := d.rules.Extract(t.Text, trade)
		if ex.JobType == "" && prior.JobType != "" {
			ex.JobType = prior.JobType
			ex.JobConfidence = prior.JobConfidence
		}
		if ex.AddressText == "" && prior.AddressText != "" {
			ex.AddressText = prior.AddressText
		}
		if urgencyRank(prior.UrgencyHint) > urgencyRank(ex.UrgencyHint) {
			ex.UrgencyHint = prior.UrgencyHint
			ex.UrgencyConfidence = prior.UrgencyConfidence
		}
	}
}

func urgencyRank(u ai.Urgency) int {
	switch u {
	case ai.UrgencyEmergency:
		return 2
	case ai.UrgencyUrgent:
		return 1
	default:
		return 0
	}
}

// resolveAddress picks the raced early resolution when it matches the final
// extraction, and otherwise resolves the extracted text.
func (d *Dispatcher) resolveAddress(ctx context.Context, ex *ai.Extraction, candidate string, early *geo.ResolvedAddress, p *profile.BusinessProfile) (*geo.ResolvedAddress, string) {
	text := ex.AddressText
	if text == "" {
		text = candidate
	}
	if text == "" {
		return nil, ""
	}
	if early != nil && text == candidate {
		return early, ""
	}
	resolved, err := d.resolver.Resolve(ctx, text, p.Anchor.Point(), p.ServiceRadiusMiles)
	if err != nil {
		return nil, err.Error()
	}
	return resolved, ""
}

// pickEstimate maps the extracted job onto the profile's pricing table,
// falling back to a diagnostic visit for low-confidence or unknown jobs.
func (d *Dispatcher) pickEstimate(ex *ai.Extraction, p *profile.BusinessProfile) *profile.JobEstimate {
	if ex.JobType == "" {
		return nil
	}
	if est, ok := p.FindEstimate(ex.JobType); ok && ex.JobConfidence >= lowJobConfidence {
		return est
	}
	return p.DiagnosticEstimate()
}

// priceSlots fills the estimate band into the proposed slot and, for the
// tonight-vs-tomorrow choice, the next-day alternative at regular rates.
func (d *Dispatcher) priceSlots(res *schedule.Result, job *profile.JobEstimate, urg urgency.Result, p *profile.BusinessProfile, loc *time.Location) error {
	quote, err := pricing.Quote(job, res.Slot.Start.In(loc), urg.Urgency, p)
	if err != nil {
		return err
	}
	res.Slot.PriceMin, res.Slot.PriceMax = quote.Min, quote.Max

	if res.Alternative != nil {
		alt, err := pricing.Quote(job, res.Alternative.Start.In(loc), ai.UrgencyNormal, p)
		if err == nil {
			res.Alternative.PriceMin, res.Alternative.PriceMax = alt.Min, alt.Max
		}
	}
	return nil
}

func (d *Dispatcher) publishBreakerStates() {
	if d.breakers == nil {
		return
	}
	for name, state := range d.breakers.States() {
		var v float64
		switch state {
		case "half_open":
			v = 1
		case "open":
			v = 2
		}
		metrics.BreakerState.WithLabelValues(name).Set(v)
	}
}

// customerText concatenates the customer's side of the conversation for
// keyword scanning.
func customerText(req *DispatchRequest) string {
	parts := []string{req.CurrentMessage}
	for _, t := range req.History {
		if t.Sender == types.SenderCustomer {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}
