package common

import "log"

// Teardown collects release functions while resources are created and runs them in reverse order. Resources that
// depend on others are created later and therefore released first.
type Teardown struct {
	steps []teardownStep
}

type teardownStep struct {
	name    string
	release func()
}

// Push registers the release of a resource that was just created.
func (t *Teardown) Push(name string, release func()) {
	t.steps = append(t.steps, teardownStep{name: name, release: release})
}

func (t *Teardown) Len() int {
	return len(t.steps)
}

// Release runs every registered step, newest first, and empties the stack. A panicking step is logged and does not
// stop the remaining ones, so Release is safe to defer on the fatal path.
func (t *Teardown) Release() {
	for len(t.steps) > 0 {
		step := t.steps[len(t.steps)-1]
		t.steps = t.steps[:len(t.steps)-1]
		runStep(step)
	}
}

func runStep(step teardownStep) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Release of %s failed: %v", step.name, r)
		}
	}()
	step.release()
}
