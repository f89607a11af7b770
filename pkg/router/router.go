package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/zen-systems/skillroute/pkg/skill"
)

// Configuration errors. These are the only errors Route returns.
var (
	ErrUnknownMode        = errors.New("unknown routing mode")
	ErrInvalidMaxAttempts = errors.New("max_attempts must be at least 1")
	ErrNoClassifier       = errors.New("no classifier configured for mode")
)

// Sink receives one Result per routing call. It must not block routing.
type Sink interface {
	Record(res *Result)
}

// Request is a single routing call.
type Request struct {
	Goal string
	Mode Mode
	// MaxAttempts bounds model classification; ignored in keyword mode.
	MaxAttempts int
}

// Router composes the skill block for a goal.
type Router struct {
	store       skill.Loader
	classifiers map[Mode]Classifier
	categoryOf  func(skill.Name) skill.Category
	sink        Sink
	logger      zerolog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithKeywordClassifier replaces the default keyword classifier.
func WithKeywordClassifier(c Classifier) RouterOption {
	return func(r *Router) {
		r.classifiers[ModeKeyword] = c
	}
}

// WithModelClassifier enables model mode.
func WithModelClassifier(c Classifier) RouterOption {
	return func(r *Router) {
		r.classifiers[ModeModel] = c
	}
}

// WithSink sets the diagnostics sink.
func WithSink(s Sink) RouterOption {
	return func(r *Router) {
		r.sink = s
	}
}

// WithLogger sets the router logger.
func WithLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithCategories overrides how selected skills are placed in the block.
func WithCategories(categoryOf func(skill.Name) skill.Category) RouterOption {
	return func(r *Router) {
		if categoryOf != nil {
			r.categoryOf = categoryOf
		}
	}
}

// NewRouter creates a router reading skill bodies from store. A nil store
// behaves as one with no documents. Keyword mode is always available; model
// mode requires WithModelClassifier.
func NewRouter(store skill.Loader, opts ...RouterOption) *Router {
	if store == nil {
		store = &skill.Store{}
	}
	keyword, err := NewKeywordClassifier(nil)
	if err != nil {
		panic(fmt.Sprintf("router: default trigger table: %v", err))
	}
	r := &Router{
		store:       store,
		classifiers: map[Mode]Classifier{ModeKeyword: keyword},
		categoryOf:  skill.CategoryOf,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "router").Logger()
	return r
}

// HasMode reports whether a classifier is configured for mode.
func (r *Router) HasMode(mode Mode) bool {
	c, ok := r.classifiers[mode]
	return ok && c != nil
}

// Route classifies the goal and returns the composed skill block. The block
// always starts with the always-on skill when it is available. Only
// configuration defects produce an error; classification failures yield a
// non-ok Result and the always-on block alone.
func (r *Router) Route(ctx context.Context, req Request) (string, *Result, error) {
	if !req.Mode.Valid() {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
	if req.Mode == ModeModel && req.MaxAttempts < 1 {
		return "", nil, fmt.Errorf("%w (got %d)", ErrInvalidMaxAttempts, req.MaxAttempts)
	}
	classifier, ok := r.classifiers[req.Mode]
	if !ok || classifier == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrNoClassifier, req.Mode)
	}

	start := time.Now()
	res := classifier.Classify(ctx, req.Goal, req.MaxAttempts)
	if res == nil {
		res = &Result{Notes: "classifier returned no result", AttemptsUsed: 1}
	}
	res.Mode = req.Mode
	if id, err := gonanoid.New(); err == nil {
		res.ID = id
	}

	var selected []skill.Name
	if res.OK {
		selected = res.Selected
	}
	if !res.OK || res.Selected == nil {
		res.Selected = []skill.Name{}
	}
	if !res.OK {
		res.Confidence = 0
	}

	composed := skill.Compose(r.store, skill.AlwaysOn, selected, r.categoryOf)
	res.DurationMillis = time.Since(start).Milliseconds()

	r.logResult(res)
	if r.sink != nil {
		r.sink.Record(res)
	}
	return composed, res, nil
}

func (r *Router) logResult(res *Result) {
	event := r.logger.Debug()
	if !res.OK {
		event = r.logger.Warn()
	}
	event.Str("route_id", res.ID).
		Str("mode", string(res.Mode)).
		Bool("ok", res.OK).
		Strs("skills", res.SelectedStrings()).
		Int("attempts", res.AttemptsUsed).
		Str("notes", res.Notes).
		Msg("routed goal")
}
