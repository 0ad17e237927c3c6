package scenario

import (
	"context"
	"net/url"
	"time"

	"paramload/internal/param"
)

const (
	// Path is the endpoint every action hits.
	Path = "/print-param"
	// ParamName is the only query parameter sent.
	ParamName = "param"
	// NameTemplate groups every generated value under one statistics entry.
	NameTemplate = "/print-param?param={val}"

	DefaultMinWait = 1 * time.Second
	DefaultMaxWait = 5 * time.Second
)

// PrintParamTask returns the weight-1 task issuing one GET with a fresh
// random value of the given length.
func PrintParamTask(length int) Task {
	if length <= 0 {
		length = param.Length
	}
	return Task{
		Name:   NameTemplate,
		Weight: 1,
		Fn: func(ctx context.Context, c Client) {
			q := url.Values{}
			q.Set(ParamName, param.GenerateN(length))
			c.Get(ctx, Path, q, NameTemplate)
		},
	}
}

// NewPrintParamUser builds the simulated user. A nil wait falls back to
// Between(DefaultMinWait, DefaultMaxWait).
func NewPrintParamUser(wait WaitTime, length int) User {
	if wait == nil {
		wait = Between(DefaultMinWait, DefaultMaxWait)
	}
	return User{
		Tasks:    []Task{PrintParamTask(length)},
		WaitTime: wait,
	}
}
