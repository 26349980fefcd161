package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestCaptureExceptionTags(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})

	CaptureException(nil, "mqtt")
	assert.Nil(t, mon.err)

	CaptureException(errors.New("boom"), "mqtt", "topic", "v2x/speed", "dangling")
	assert.EqualError(t, mon.err, "boom")
	assert.Equal(t, map[string]string{"module": "mqtt", "topic": "v2x/speed"}, mon.tags)
}
