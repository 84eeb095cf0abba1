package stress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avstrong/campusnest/internal/client"
	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/mess"
)

var (
	ErrNoTokens           = errors.New("no bearer tokens resolved")
	ErrNoMessID           = errors.New("mess id is required")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidRequests    = errors.New("requests must be at least 1")
)

type Config struct {
	Concurrency int
	Requests    int
	Timeout     time.Duration
	Tokens      []string
	MessID      string
	Plan        string
	SampleSize  int
}

func DefaultConfig() Config {
	return Config{
		Concurrency: 20,               //nolint:gomnd
		Requests:    200,              //nolint:gomnd
		Timeout:     15 * time.Second, //nolint:gomnd
		Tokens:      nil,
		MessID:      "",
		Plan:        "monthly",
		SampleSize:  20, //nolint:gomnd
	}
}

func (c Config) Validate() error {
	switch {
	case len(c.Tokens) == 0:
		return ErrNoTokens
	case c.MessID == "":
		return ErrNoMessID
	case c.Concurrency < 1:
		return ErrInvalidConcurrency
	case c.Requests < 1:
		return ErrInvalidRequests
	}

	return nil
}

// TokenFor picks the bearer token of request i round robin.
func TokenFor(tokens []string, i int) string {
	return tokens[i%len(tokens)]
}

type Stats struct {
	Success     int `json:"success"`
	ClientError int `json:"clientError"`
	ServerError int `json:"serverError"`
	Other       int `json:"other"`
}

func (s *Stats) add(class client.Class) {
	switch class {
	case client.ClassSuccess:
		s.Success++
	case client.ClassClientError:
		s.ClientError++
	case client.ClassServerError:
		s.ServerError++
	case client.ClassOther:
		s.Other++
	default:
		s.Other++
	}
}

func (s Stats) Total() int {
	return s.Success + s.ClientError + s.ServerError + s.Other
}

// Record is one request kept for manual inspection.
type Record struct {
	Index          int          `json:"index"`
	TokenIndex     int          `json:"tokenIndex"`
	Class          client.Class `json:"class"`
	StatusCode     int          `json:"statusCode,omitempty"`
	Message        string       `json:"message,omitempty"`
	SubscriptionID string       `json:"subscriptionId,omitempty"`
	DurationMs     int64        `json:"durationMs"`
}

type Summary struct {
	MessID      string    `json:"messId"`
	Plan        string    `json:"plan"`
	Concurrency int       `json:"concurrency"`
	Requests    int       `json:"requests"`
	Stats       Stats     `json:"stats"`
	MaxInFlight int       `json:"maxInFlight"`
	StartedAt   time.Time `json:"startedAt"`
	ElapsedMs   int64     `json:"elapsedMs"`
	Samples     []Record  `json:"samples"`
}

type trigger interface {
	Subscribe(ctx context.Context, messID, plan string, start time.Time, opts ...client.RequestOption) mess.Result
}

type Harness struct {
	l       *logger.Logger
	trigger trigger
	cfg     Config
}

func New(l *logger.Logger, trigger trigger, cfg Config) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Harness{l: l, trigger: trigger, cfg: cfg}, nil
}

type completion struct {
	index int
	res   mess.Result
}

// Run issues exactly cfg.Requests subscribe calls with at most
// cfg.Concurrency in flight. launched, inFlight and the stats are owned by
// this goroutine alone; requests report back over done.
func (h *Harness) Run(ctx context.Context) *Summary {
	started := time.Now()

	summary := &Summary{
		MessID:      h.cfg.MessID,
		Plan:        h.cfg.Plan,
		Concurrency: h.cfg.Concurrency,
		Requests:    h.cfg.Requests,
		Stats:       Stats{Success: 0, ClientError: 0, ServerError: 0, Other: 0},
		MaxInFlight: 0,
		StartedAt:   started.UTC(),
		ElapsedMs:   0,
		Samples:     make([]Record, max(0, min(h.cfg.SampleSize, h.cfg.Requests))),
	}

	done := make(chan completion, h.cfg.Concurrency)

	var launched, inFlight int

	launch := func() {
		i := launched
		launched++
		inFlight++
		summary.MaxInFlight = max(summary.MaxInFlight, inFlight)

		go func() {
			rctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
			defer cancel()

			res := h.trigger.Subscribe(rctx, h.cfg.MessID, h.cfg.Plan, time.Now().UTC(),
				client.WithToken(TokenFor(h.cfg.Tokens, i)))

			done <- completion{index: i, res: res}
		}()
	}

	for inFlight < h.cfg.Concurrency && launched < h.cfg.Requests {
		launch()
	}

	for inFlight > 0 {
		c := <-done
		inFlight--

		summary.Stats.add(c.res.Class)

		if c.index < len(summary.Samples) {
			summary.Samples[c.index] = h.record(c)
		}

		switch {
		case c.res.Class == client.ClassOther:
			h.l.LogDebug("Request %d failed: %v", c.index, c.res.Err)
		case c.res.Class == client.ClassSuccess && c.res.Err != nil:
			h.l.LogDebug("Request %d admitted with unreadable body: %v", c.index, c.res.Err)
		}

		for inFlight < h.cfg.Concurrency && launched < h.cfg.Requests {
			launch()
		}
	}

	summary.ElapsedMs = time.Since(started).Milliseconds()

	h.l.Infow("stress run finished",
		"messId", summary.MessID,
		"requests", summary.Requests,
		"success", summary.Stats.Success,
		"clientError", summary.Stats.ClientError,
		"serverError", summary.Stats.ServerError,
		"other", summary.Stats.Other,
		"maxInFlight", summary.MaxInFlight,
		"elapsedMs", summary.ElapsedMs,
	)

	return summary
}

func (h *Harness) record(c completion) Record {
	r := Record{
		Index:          c.index,
		TokenIndex:     c.index % len(h.cfg.Tokens),
		Class:          c.res.Class,
		StatusCode:     c.res.StatusCode,
		Message:        c.res.Message,
		SubscriptionID: "",
		DurationMs:     c.res.Duration.Milliseconds(),
	}

	if c.res.Subscription != nil {
		r.SubscriptionID = c.res.Subscription.ID
	}

	return r
}

// String renders the aggregate counts on one line.
func (s *Summary) String() string {
	return fmt.Sprintf("success=%d clientError=%d serverError=%d other=%d total=%d maxInFlight=%d elapsed=%dms",
		s.Stats.Success, s.Stats.ClientError, s.Stats.ServerError, s.Stats.Other, s.Stats.Total(),
		s.MaxInFlight, s.ElapsedMs)
}
