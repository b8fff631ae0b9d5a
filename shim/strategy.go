package shim

// strategy decides which goroutine carries an entry-script execution.
// Callers only ever see the Task.
type strategy interface {
	launch(t *Task, run func() *EvalError)
}

// workerStrategy runs the execution on a dedicated goroutine; the caller
// joins through the task.
type workerStrategy struct{}

func (workerStrategy) launch(t *Task, run func() *EvalError) {
	go func() {
		t.finish(run())
	}()
}

// inlineStrategy runs the execution on the calling goroutine; the task is
// already finished when launch returns.
type inlineStrategy struct{}

func (inlineStrategy) launch(t *Task, run func() *EvalError) {
	t.finish(run())
}
