package lifecycle

import (
	"sync"

	"github.com/rustnet/http-contract-tests/framework"
)

// Teardown collects release actions and runs them once, most recently registered first.
// Run may be called from several exit paths; only the first call does anything.
type Teardown struct {
	actions []teardownAction
	once    sync.Once
	lock    sync.Mutex
	logger  framework.Logger
	ran     int
}

type teardownAction struct {
	name   string
	action func()
}

func NewTeardown(logger framework.Logger) *Teardown {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Teardown{logger: logger}
}

// Register adds a release action.
func (t *Teardown) Register(name string, action func()) {
	t.lock.Lock()
	t.actions = append(t.actions, teardownAction{name: name, action: action})
	t.lock.Unlock()
}

// Run executes the registered actions. A panicking action does not stop the others.
func (t *Teardown) Run() {
	t.once.Do(func() {
		t.lock.Lock()
		actions := append([]teardownAction(nil), t.actions...)
		t.lock.Unlock()

		for i := len(actions) - 1; i >= 0; i-- {
			t.runOne(actions[i])
		}
		t.lock.Lock()
		t.ran++
		t.lock.Unlock()
	})
}

// Executions returns how many times the teardown sequence has run: 0 or 1.
func (t *Teardown) Executions() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.ran
}

func (t *Teardown) runOne(a teardownAction) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Printf("teardown: %s panicked: %v", a.name, r)
		}
	}()
	t.logger.Printf("teardown: %s", a.name)
	a.action()
}
