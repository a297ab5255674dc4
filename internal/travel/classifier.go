package travel

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"travel-planner-backend/internal/llm"
)

// Classification is the classifier's verdict for one utterance.
type Classification struct {
	Intent     Intent
	Confidence float64
	Entities   []string
	// Fallback is set when the model output could not be used.
	Fallback bool
}

// DefaultClassification is used whenever the model output is missing or
// malformed.
func DefaultClassification() Classification {
	return Classification{
		Intent:     IntentGeneralTravel,
		Confidence: DefaultConfidence,
		Entities:   []string{},
		Fallback:   true,
	}
}

var errMalformed = errors.New("malformed classification")

// Classifier labels a single utterance. It never returns an error: any
// gateway or parse failure yields DefaultClassification.
type Classifier struct {
	llm    llm.Completer
	system string
	cache  *cache.Cache
	log    *zap.Logger
}

// NewClassifier builds a classifier. A positive cacheTTL memoizes
// successful classifications per normalized utterance.
func NewClassifier(c llm.Completer, catalog *Catalog, cacheTTL time.Duration, log *zap.Logger) *Classifier {
	cl := &Classifier{
		llm:    c,
		system: catalog.ClassifierPrompt(),
		log:    log.Named("classifier"),
	}
	if cacheTTL > 0 {
		cl.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return cl
}

// Classify sends only the current utterance; history is deliberately not
// included.
func (c *Classifier) Classify(ctx context.Context, message string) Classification {
	key := cacheKey(message)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(Classification).clone()
		}
	}

	raw, err := c.llm.Complete(ctx, llm.CompletionRequest{
		System:    c.system,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: message}},
		MaxTokens: ClassifierMaxTokens,
		JSON:      true,
	})
	if err != nil {
		c.log.Warn("classification call failed, using default intent", zap.Error(err))
		return DefaultClassification()
	}
	out, err := ParseClassification(raw)
	if err != nil {
		c.log.Warn("unusable classification, using default intent",
			zap.Error(err),
			zap.String("raw", truncate(raw, 200)),
		)
		return DefaultClassification()
	}
	if c.cache != nil {
		c.cache.Set(key, out.clone(), cache.DefaultExpiration)
	}
	c.log.Debug("classified",
		zap.String("intent", string(out.Intent)),
		zap.Float64("confidence", out.Confidence),
		zap.Strings("entities", out.Entities),
	)
	return out
}

type rawClassification struct {
	Intent      *string  `json:"intent"`
	Confidence  *float64 `json:"confidence"`
	KeyEntities []string `json:"key_entities"`
}

// ParseClassification decodes `{intent, confidence, key_entities}`. intent
// and confidence are required and intent must be a known label;
// key_entities may be omitted. Out-of-range confidences are kept as given.
func ParseClassification(raw string) (Classification, error) {
	var rc rawClassification
	if err := decodeJSONObject(raw, &rc); err != nil {
		return Classification{}, errors.Wrap(errMalformed, err.Error())
	}
	if rc.Intent == nil {
		return Classification{}, errors.Wrap(errMalformed, "missing intent")
	}
	if rc.Confidence == nil {
		return Classification{}, errors.Wrap(errMalformed, "missing confidence")
	}
	intent, ok := ParseIntent(*rc.Intent)
	if !ok {
		return Classification{}, errors.Wrapf(errMalformed, "unknown intent %q", *rc.Intent)
	}
	entities := rc.KeyEntities
	if entities == nil {
		entities = []string{}
	}
	return Classification{Intent: intent, Confidence: *rc.Confidence, Entities: entities}, nil
}

// decodeJSONObject unmarshals raw, retrying on the outermost {...} span when
// the model wrapped the object in prose or code fences.
func decodeJSONObject(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("empty output")
	}
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first < 0 || last <= first {
		return err
	}
	if err2 := json.Unmarshal([]byte(raw[first:last+1]), v); err2 != nil {
		return err
	}
	return nil
}

func (c Classification) clone() Classification {
	c.Entities = append([]string{}, c.Entities...)
	return c
}

func cacheKey(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
