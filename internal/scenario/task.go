package scenario

import (
	"context"
	"math/rand/v2"
	"net/url"
)

// Client issues requests on behalf of a simulated user. Implementations own
// outcome recording; a Get never fails from the caller's point of view.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, name string)
}

// Task is a single action a simulated user can perform.
type Task struct {
	Name   string
	Weight int
	Fn     func(ctx context.Context, c Client)
}

// User is the behaviour of one simulated user: what it does and how long it
// waits between doing it.
type User struct {
	Tasks    []Task
	WaitTime WaitTime
}

// Pause waits for the next interval drawn from the user's policy. It returns
// false if ctx ended first.
func (u User) Pause(ctx context.Context) bool {
	if u.WaitTime == nil {
		return ctx.Err() == nil
	}
	return Sleep(ctx, u.WaitTime.Next())
}

// Pick chooses a task with probability proportional to its weight. Tasks with
// a non-positive weight are skipped unless no task has a positive weight.
func Pick(tasks []Task) (Task, bool) {
	if len(tasks) == 0 {
		return Task{}, false
	}

	total := 0
	for _, t := range tasks {
		if t.Weight > 0 {
			total += t.Weight
		}
	}
	if total == 0 {
		return tasks[rand.IntN(len(tasks))], true
	}

	n := rand.IntN(total)
	for _, t := range tasks {
		if t.Weight <= 0 {
			continue
		}
		if n < t.Weight {
			return t, true
		}
		n -= t.Weight
	}
	return tasks[len(tasks)-1], true
}
