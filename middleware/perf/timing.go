package perf

import (
	"context"
	"strconv"
	"time"
)

type timerKey struct{}

// Timer mede a duração de uma request. Vive no context da request.
type Timer struct {
	start time.Time
	now   func() time.Time
}

func StartTimer(ctx context.Context, now func() time.Time) (context.Context, *Timer) {
	if now == nil {
		now = time.Now
	}
	t := &Timer{start: now(), now: now}
	return context.WithValue(ctx, timerKey{}, t), t
}

func TimerFrom(ctx context.Context) (*Timer, bool) {
	t, ok := ctx.Value(timerKey{}).(*Timer)
	return t, ok
}

func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// FormatSeconds formata como "0.123s" (três casas).
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64) + "s"
}
