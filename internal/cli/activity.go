package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/matzehuels/karmyc/pkg/errors"
)

var activityFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	activityTick = 80 * time.Millisecond
	clearLine    = "\r\x1b[2K"
)

// activity animates one status line on w while a store or render call runs,
// naming what happens and where: "⠹ Saving main redis layout:main".
type activity struct {
	w     io.Writer
	what  string
	where string

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex // serializes writes to w
}

// startActivity draws the first frame and animates until stop or until ctx
// is done.
func startActivity(ctx context.Context, w io.Writer, what, where string) *activity {
	if w == nil {
		w = io.Discard
	}
	actx, cancel := context.WithCancel(ctx)
	a := &activity{
		w:       w,
		what:    what,
		where:   where,
		parent:  ctx,
		ctx:     actx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *activity) line(frame string) string {
	s := styleIconSpinner.Render(frame) + " " + a.what
	if a.where != "" {
		s += " " + StyleDim.Render(a.where)
	}
	return s
}

func (a *activity) run() {
	defer close(a.stopped)
	ticker := time.NewTicker(activityTick)
	defer ticker.Stop()
	for i := 0; ; i++ {
		a.write(clearLine + a.line(activityFrames[i%len(activityFrames)]))
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *activity) write(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprint(a.w, s)
}

// stop ends the animation and clears its line. Later calls do nothing.
func (a *activity) stop() {
	a.once.Do(func() {
		a.cancel()
		<-a.stopped
		a.write(clearLine)
	})
}

// finish stops the animation, then prints success, or the failure when err
// is non-nil. It returns err.
func (a *activity) finish(err error, success string) error {
	a.stop()
	if err != nil {
		printError("%s failed: %s", a.what, errors.UserMessage(err))
		return err
	}
	printSuccess("%s", success)
	return nil
}

// interrupted reports whether the caller's context ended the activity.
func (a *activity) interrupted() bool {
	return a.parent.Err() != nil
}
