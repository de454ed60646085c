package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	n := Success("saved")
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.Equal(t, "saved", n.Message)

	n = Info("heads up", "details here")
	assert.Equal(t, SeverityInfo, n.Severity)
	assert.Equal(t, "details here", n.Description)

	n = Error("boom")
	assert.Equal(t, SeverityError, n.Severity)
}

func TestRecorderCollectsInOrder(t *testing.T) {
	r := NewRecorder()
	r.Dispatch(Success("one"))
	r.Dispatch(Error("two"))

	items := r.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, "one", items[0].Message)
	assert.Equal(t, "two", r.Last().Message)
}

func TestRecorderIsConcurrencySafe(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Dispatch(Info("msg", ""))
		}()
	}
	wg.Wait()
	assert.Len(t, r.Items(), 20)
}
