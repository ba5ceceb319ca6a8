// Package session turns settled request descriptors into displayed results.
//
// A Session is owned by one page and mutated only from that page's event
// loop. The network call itself (Run) touches no session state, so it can
// run on any goroutine; its Result is handed back to Apply, which discards
// anything older than the most recently begun request.
package session

import (
	"context"
	"net/url"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/query"
)

// Backend is the subset of the API client a session needs.
type Backend interface {
	Search(ctx context.Context, params url.Values) (*api.ResultPage, error)
	Headlines(ctx context.Context, params url.Values) (*api.ResultPage, error)
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSearching
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the derived display state of a page.
type State struct {
	Articles     []api.Article
	TotalPages   int
	TotalResults int
	Loading      bool
	Err          string
	HasSearched  bool
	Phase        Phase
	// Descriptor is the last attempted request.
	Descriptor query.Descriptor
}

// NoResults reports the "searched, nothing found" display state. It is
// distinct from both an error and not having searched yet.
func (s State) NoResults() bool {
	return s.HasSearched && !s.Loading && s.Err == "" && s.Phase == PhaseSuccess && len(s.Articles) == 0
}

// Request is one begun fetch. It carries its own context so a superseded
// request can be cancelled.
type Request struct {
	Seq        uint64
	Descriptor query.Descriptor
	ctx        context.Context
}

// Context returns the request's context.
func (r Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Result is the outcome of Run, tagged with the request's sequence number.
type Result struct {
	Seq        uint64
	Descriptor query.Descriptor
	Page       *api.ResultPage
	Err        error
}

type Session struct {
	backend  Backend
	seq      uint64
	state    State
	last     *query.Descriptor
	cancel   context.CancelFunc
	onCommit func(query.Descriptor)
}

type Option func(*Session)

// WithCommitHook is called with every descriptor that is actually sent,
// before the request goes out. The location projection is written here.
func WithCommitHook(fn func(query.Descriptor)) Option {
	return func(s *Session) { s.onCommit = fn }
}

func New(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		state:   State{Articles: []api.Article{}, TotalPages: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the display state.
func (s *Session) State() State {
	st := s.state
	st.Articles = append([]api.Article(nil), s.state.Articles...)
	return st
}

// Seq returns the sequence number of the newest begun request.
func (s *Session) Seq() uint64 {
	return s.seq
}

// Begin starts a fetch for d. A blank search descriptor returns the session
// to idle, clears results and reports false; nothing is sent. Any request
// still in flight is cancelled and its result will be ignored.
func (s *Session) Begin(d query.Descriptor) (Request, bool) {
	s.cancelInFlight()
	s.seq++

	if d.Blank() {
		s.last = nil
		s.state = State{
			Articles:   []api.Article{},
			TotalPages: 1,
			Phase:      PhaseIdle,
			Descriptor: d,
		}
		debuglog.WithFields(map[string]any{"seq": s.seq}).Debugf("blank query, session idle")
		return Request{}, false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	last := d
	s.last = &last

	s.state.Loading = true
	s.state.Err = ""
	s.state.HasSearched = true
	s.state.Phase = PhaseSearching
	s.state.Descriptor = d

	if s.onCommit != nil {
		s.onCommit(d)
	}

	debuglog.WithFields(map[string]any{"seq": s.seq, "kind": d.Kind.String()}).Infof("request %s", d.Location())
	return Request{Seq: s.seq, Descriptor: d, ctx: ctx}, true
}

// Retry re-issues the last attempted descriptor. Retries only ever happen
// on explicit user action. An idle session has nothing to retry.
func (s *Session) Retry() (Request, bool) {
	if s.last == nil || s.state.Phase == PhaseIdle {
		return Request{}, false
	}
	return s.Begin(*s.last)
}

// Run performs exactly one backend call for req.
func (s *Session) Run(req Request) Result {
	params := req.Descriptor.Params().Values()

	var (
		page *api.ResultPage
		err  error
	)
	switch req.Descriptor.Kind {
	case query.KindHeadlines:
		page, err = s.backend.Headlines(req.Context(), params)
	default:
		page, err = s.backend.Search(req.Context(), params)
	}
	return Result{Seq: req.Seq, Descriptor: req.Descriptor, Page: page, Err: err}
}

// Apply folds res into the display state. Results from anything but the
// newest request are dropped and Apply reports false.
func (s *Session) Apply(res Result) bool {
	log := debuglog.WithFields(map[string]any{"seq": res.Seq, "latest": s.seq})
	if res.Seq != s.seq || !s.state.Loading {
		log.Debugf("discarding stale result")
		return false
	}
	s.cancelInFlight()
	s.state.Loading = false

	if res.Err != nil {
		s.state.Err = api.Message(res.Err)
		s.state.Phase = PhaseFailed
		log.Warnf("fetch failed: %v", res.Err)
		return true
	}

	page := res.Page
	if page == nil {
		page = &api.ResultPage{}
	}
	s.state.Articles = page.Articles
	if s.state.Articles == nil {
		s.state.Articles = []api.Article{}
	}
	s.state.TotalPages = page.TotalPages
	if s.state.TotalPages < 1 {
		s.state.TotalPages = 1
	}
	s.state.TotalResults = page.TotalResults
	s.state.Err = ""
	s.state.Phase = PhaseSuccess
	log.Infof("%d articles, %d pages", len(s.state.Articles), s.state.TotalPages)
	return true
}

// Fetch begins, runs and applies d synchronously. It returns false when d
// was blank.
func (s *Session) Fetch(d query.Descriptor) bool {
	req, ok := s.Begin(d)
	if !ok {
		return false
	}
	s.Apply(s.Run(req))
	return true
}

// Close cancels any request still in flight.
func (s *Session) Close() {
	s.cancelInFlight()
}

func (s *Session) cancelInFlight() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
