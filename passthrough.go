package outpost

import (
	"io"
	"strings"
	"sync"

	"github.com/outpost-telemetry/outpost-go/internal/event"
)

// passthroughRenderer writes the synchronous console form of an event:
// `[LEVEL] message {k=v }` with the caller's attributes in call order.
type passthroughRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func newPassthroughRenderer(out io.Writer) *passthroughRenderer {
	return &passthroughRenderer{out: out}
}

func (r *passthroughRenderer) render(level event.Level, msg string, attrs []Attribute) {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	if len(attrs) > 0 {
		b.WriteString(" {")
		for _, attr := range attrs {
			b.WriteString(attr.Key)
			b.WriteByte('=')
			b.WriteString(attr.Value)
			b.WriteByte(' ')
		}
		b.WriteByte('}')
	}
	b.WriteByte('\n')

	// One locked write per line so concurrent producers never interleave.
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.out, b.String())
}
