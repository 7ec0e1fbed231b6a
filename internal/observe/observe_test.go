package observe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct{ got []Failure }

func (r *recorder) Report(_ context.Context, f Failure) { r.got = append(r.got, f) }

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, nil, b}
	m.Report(context.Background(), Failure{Op: "search_stories"})
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Equal(t, "search_stories", b.got[0].Op)
}

func TestLogReporterWritesWarn(t *testing.T) {
	var buf bytes.Buffer
	r := LogReporter{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	r.Report(context.Background(), Failure{Op: "comments_for_story", StoryID: 12, Status: 503, Err: errors.New("boom")})
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "op=comments_for_story")
	assert.Contains(t, out, "story_id=12")
	assert.Contains(t, out, "status=503")
	assert.Contains(t, out, "boom")
}
