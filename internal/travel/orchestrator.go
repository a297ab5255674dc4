package travel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"travel-planner-backend/internal/llm"
)

const emptyResponseReply = "I'm sorry, I couldn't process your travel request. Please try again!"

// Options tunes the pipeline. Zero values select the package defaults.
type Options struct {
	HistoryWindow        int
	FollowUpThreshold    float64
	FollowUpMaxQuestions int
	ClassifyCacheTTL     time.Duration
}

func (o Options) withDefaults() Options {
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = DefaultHistoryWindow
	}
	if o.FollowUpThreshold <= 0 {
		o.FollowUpThreshold = DefaultFollowUpThreshold
	}
	if o.FollowUpMaxQuestions <= 0 {
		o.FollowUpMaxQuestions = DefaultFollowUpMaxQuestions
	}
	return o
}

type stage int

const (
	stageStart stage = iota
	stageClassifying
	stageGenerating
	stageAugmenting
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageStart:
		return "start"
	case stageClassifying:
		return "classifying"
	case stageGenerating:
		return "generating"
	case stageAugmenting:
		return "augmenting"
	case stageDone:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Orchestrator turns one utterance plus prior turns into one reply:
// classify -> generate -> (augment) -> done.
type Orchestrator struct {
	classifier *Classifier
	generator  *Generator
	augmenter  *FollowUpAugmenter
	tracer     trace.Tracer
	log        *zap.Logger
}

func NewOrchestrator(c llm.Completer, catalog *Catalog, opts Options, log *zap.Logger) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		classifier: NewClassifier(c, catalog, opts.ClassifyCacheTTL, log),
		generator:  NewGenerator(c, catalog, opts.HistoryWindow),
		augmenter:  NewFollowUpAugmenter(catalog, opts.FollowUpThreshold, opts.FollowUpMaxQuestions),
		tracer:     otel.Tracer("travel-planner-backend/travel"),
		log:        log.Named("orchestrator"),
	}
}

// Process runs one transaction and always returns reply text. Failures
// anywhere in the pipeline become an apologetic reply instead of an error.
func (o *Orchestrator) Process(ctx context.Context, message, sessionID string, history []llm.Message) string {
	ctx, span := o.tracer.Start(ctx, "travel.process",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	state := newWorkflowState(message, sessionID, filterHistory(history))
	start := time.Now()
	if err := o.run(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.log.Error("transaction failed",
			zap.String("session_id", sessionID),
			zap.String("intent", string(state.Intent)),
			zap.Error(err),
		)
		return failureReply(err)
	}
	if strings.TrimSpace(state.Response) == "" {
		return emptyResponseReply
	}
	o.log.Info("transaction complete",
		zap.String("session_id", sessionID),
		zap.String("intent", string(state.Intent)),
		zap.Float64("confidence", state.Confidence),
		zap.Int("history", len(state.History)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return state.Response
}

// run drives the state machine. Panics inside a stage surface as errors.
func (o *Orchestrator) run(ctx context.Context, state *WorkflowState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("internal error: %v", r)
		}
	}()

	for st := stageStart; st != stageDone; {
		switch st {
		case stageStart:
			st = stageClassifying
		case stageClassifying:
			o.classify(ctx, state)
			st = stageGenerating
		case stageGenerating:
			if err := o.generate(ctx, state); err != nil {
				return err
			}
			if o.augmenter.ShouldAugment(state.Intent, state.Confidence) {
				st = stageAugmenting
			} else {
				st = stageDone
			}
		case stageAugmenting:
			o.augment(ctx, state)
			st = stageDone
		default:
			return errors.Errorf("unexpected stage %s", st)
		}
	}
	return nil
}

func (o *Orchestrator) classify(ctx context.Context, state *WorkflowState) {
	ctx, span := o.tracer.Start(ctx, "travel.classify")
	defer span.End()
	c := o.classifier.Classify(ctx, state.CurrentMessage)
	state.applyClassification(c)
	span.SetAttributes(
		attribute.String("travel.intent", string(c.Intent)),
		attribute.Float64("travel.confidence", c.Confidence),
		attribute.Bool("travel.fallback", c.Fallback),
	)
}

func (o *Orchestrator) generate(ctx context.Context, state *WorkflowState) error {
	ctx, span := o.tracer.Start(ctx, "travel.generate")
	defer span.End()
	out, err := o.generator.Generate(ctx, state.CurrentMessage, state.Intent, state.History)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	state.Response = out
	state.HasResponse = true
	return nil
}

func (o *Orchestrator) augment(ctx context.Context, state *WorkflowState) {
	_, span := o.tracer.Start(ctx, "travel.augment")
	defer span.End()
	state.Response = o.augmenter.Augment(state.Response, state.Intent)
}

func failureReply(err error) string {
	switch {
	case llm.IsTimeout(err):
		return fmt.Sprintf("Sorry, the travel planner took too long to respond (%v). Please try again in a moment.", err)
	case llm.IsTransport(err):
		return fmt.Sprintf("Sorry, I couldn't reach the travel planning service right now (%v). Please try again shortly.", err)
	default:
		return fmt.Sprintf("I encountered an error while planning your trip: %v. Please try rephrasing your question.", err)
	}
}
