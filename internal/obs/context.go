package obs

import (
	"context"
	"sync"
)

type tagsKey struct{}

// RequestTags carries labels that handlers resolve while serving a request.
// Outer middleware read them once the inner chain has returned.
type RequestTags struct {
	mu       sync.RWMutex
	route    string
	register string
}

// WithRequestTags attaches an empty tag set to ctx, reusing one that is already present.
func WithRequestTags(ctx context.Context) (context.Context, *RequestTags) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tags := TagsFromContext(ctx); tags != nil {
		return ctx, tags
	}
	tags := &RequestTags{}
	return context.WithValue(ctx, tagsKey{}, tags), tags
}

// TagsFromContext returns the request tags or nil. All methods accept a nil receiver.
func TagsFromContext(ctx context.Context) *RequestTags {
	if ctx == nil {
		return nil
	}
	tags, _ := ctx.Value(tagsKey{}).(*RequestTags)
	return tags
}

// SetRoute pins the route label used by metrics, logs and spans.
func (t *RequestTags) SetRoute(route string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.route = route
	t.mu.Unlock()
}

// Route returns the pinned route label.
func (t *RequestTags) Route() string {
	if t == nil {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.route
}

// SetRegister records the register the request acted on.
func (t *RequestTags) SetRegister(id string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.register = id
	t.mu.Unlock()
}

// Register returns the recorded register id.
func (t *RequestTags) Register() string {
	if t == nil {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.register
}
