package mess

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/avstrong/campusnest/internal/client"
)

type subscriber interface {
	Subscribe(
		ctx context.Context,
		messID string,
		params client.SubscribeParams,
		opts ...client.RequestOption,
	) (*client.Subscription, error)
}

// Result is the classified outcome of one subscribe call.
type Result struct {
	Class        client.Class         `json:"class"`
	StatusCode   int                  `json:"statusCode,omitempty"`
	Message      string               `json:"message,omitempty"`
	Subscription *client.Subscription `json:"subscription,omitempty"`
	Err          error                `json:"-"`
	Duration     time.Duration        `json:"durationNs"`
}

// Trigger fires subscribe requests. It never checks capacity itself; the
// server is the only authority.
type Trigger struct {
	subscriber subscriber
}

func NewTrigger(s subscriber) *Trigger {
	return &Trigger{subscriber: s}
}

func (t *Trigger) Subscribe(
	ctx context.Context,
	messID, plan string,
	start time.Time,
	opts ...client.RequestOption,
) Result {
	begin := time.Now()

	var resp *http.Response

	opts = slices.Concat(opts, []client.RequestOption{client.WithResponseInto(&resp)})

	sub, err := t.subscriber.Subscribe(ctx, messID, client.SubscribeParams{Plan: plan, StartDate: start}, opts...)

	res := Result{
		Class:        client.ClassOf(err),
		StatusCode:   0,
		Message:      client.Message(err),
		Subscription: sub,
		Err:          err,
		Duration:     time.Since(begin),
	}

	// The status line is authoritative: a 2xx whose body does not decode is
	// still an admission. Err is kept for logging.
	if resp != nil {
		res.StatusCode = resp.StatusCode
		res.Class = client.Classify(resp.StatusCode)

		if res.Class == client.ClassSuccess {
			res.Message = ""
		}
	}

	return res
}
