// Package scout drives the search request/response cycle: it dispatches
// discovery requests, classifies their outcome, and publishes either a
// ranked restaurant list with citation sources or a typed error into the
// session.
package scout

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"tastetrail/internal/discovery"
	"tastetrail/internal/models"
	"tastetrail/internal/monitoring"
	"tastetrail/internal/session"
	"tastetrail/internal/speech"
)

// Options carries the optional modalities of one search.
type Options struct {
	PhotoB64   string
	VoiceQuery string
	DemoMode   bool
}

// Outcome is the terminal state of one search dispatch.
type Outcome struct {
	Restaurants []models.Restaurant      `json:"restaurants,omitempty"`
	Sources     []models.GroundingSource `json:"sources,omitempty"`
	Err         *discovery.ScoutError    `json:"-"`
	// Stale marks a completion that resolved after a newer dispatch and
	// was therefore discarded from session state.
	Stale bool `json:"-"`
}

// Orchestrator coordinates searches for any number of sessions. Each
// dispatch gets a monotonic sequence number; only the completion matching
// the session's latest dispatch is published.
type Orchestrator struct {
	live      discovery.Finder
	demo      discovery.Finder
	speaker   speech.Speaker
	monitor   *monitoring.Monitor
	demoDelay time.Duration
	seq       atomic.Uint64
}

// New wires an orchestrator. The demo finder and speaker may be nil; a nil
// speaker narrates nothing.
func New(live, demo discovery.Finder, speaker speech.Speaker, monitor *monitoring.Monitor, demoDelay time.Duration) *Orchestrator {
	if demo == nil {
		demo = discovery.NewMockFinder()
	}
	if speaker == nil {
		speaker = speech.Noop{}
	}
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}
	return &Orchestrator{
		live:      live,
		demo:      demo,
		speaker:   speaker,
		monitor:   monitor,
		demoDelay: demoDelay,
	}
}

// Search runs one search to completion. The submitted profile becomes the
// session's active profile. Demo mode waits a fixed simulated delay and
// uses the canned finder with no citation sources; otherwise the live
// capability is invoked with the full profile, location, user identity and
// voice query. The in-flight marker is always cleared for the accepted
// completion, success or failure.
func (o *Orchestrator) Search(ctx context.Context, sess *session.Session, p models.TasteProfile, opts Options) *Outcome {
	p = sess.Profile.SetFromForm(p)

	seq := o.seq.Add(1)
	sess.BeginSearch(seq)

	mode := "live"
	if opts.DemoMode {
		mode = "demo"
	}
	start := time.Now()

	result, scoutErr := o.dispatch(ctx, sess, p, opts)
	elapsed := time.Since(start)

	applied := sess.CompleteSearch(seq, result, scoutErr)

	outcome := "success"
	resultCount := 0
	if scoutErr != nil {
		outcome = string(scoutErr.Code)
	} else {
		resultCount = len(result.Restaurants)
	}
	monitoring.SearchesTotal.WithLabelValues(mode, outcome).Inc()
	monitoring.SearchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	o.monitor.RecordSearchOutcome(mode, outcome, resultCount, elapsed)

	if !applied {
		monitoring.StaleCompletionsTotal.Inc()
		log.Printf("discarding stale search completion seq=%d for user %s", seq, sess.User.ID)
		return &Outcome{Stale: true, Err: scoutErr}
	}

	if scoutErr != nil {
		return &Outcome{Err: scoutErr}
	}

	// Spoken confirmation is best-effort; a failed narration is ignored.
	go func() {
		text := fmt.Sprintf("Scouted %d gourmet nodes for you. Ready for sync!", len(result.Restaurants))
		if err := o.speaker.Speak(sess.Context(), text); err != nil {
			log.Printf("search narration failed: %v", err)
		}
	}()

	return &Outcome{Restaurants: result.Restaurants, Sources: result.Sources}
}

// dispatch invokes the selected capability and classifies any failure,
// including panics below the finder boundary, into the closed taxonomy.
func (o *Orchestrator) dispatch(ctx context.Context, sess *session.Session, p models.TasteProfile, opts Options) (result *discovery.Result, scoutErr *discovery.ScoutError) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			scoutErr = discovery.NewScoutError(discovery.CodeLogicCrash, fmt.Errorf("panic during search: %v", r))
		}
	}()

	q := discovery.Query{
		Profile:    p,
		Location:   sess.Location(),
		PhotoB64:   opts.PhotoB64,
		User:       sess.User,
		VoiceQuery: opts.VoiceQuery,
	}

	finder := o.live
	if opts.DemoMode {
		// Fixed delay simulating capability latency.
		timer := time.NewTimer(o.demoDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, discovery.Classify(ctx.Err())
		case <-timer.C:
		}
		finder = o.demo
	}

	result, err := finder.Find(ctx, q)
	if err != nil {
		return nil, discovery.Classify(err)
	}
	return result, nil
}
