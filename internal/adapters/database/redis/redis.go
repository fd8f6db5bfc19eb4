package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/redis/callbacks"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/redis/renders"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/redis/states"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	States    *states.Storage
	Renders   *renders.Storage
	Callbacks *callbacks.Storage
}

type Options struct {
	Host     string
	Port     string
	Password string
	// StateTTL bounds how long an unanswered prompt keeps a user in input mode.
	StateTTL time.Duration
}

func New(opts Options) (*Client, error) {
	stateStorage, err := connect(opts, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to ping state storage: %w", err)
	}

	renderStorage, err := connect(opts, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to ping render storage: %w", err)
	}

	callbackStorage, err := connect(opts, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to ping callback storage: %w", err)
	}

	return &Client{
		States:    states.NewStorage(stateStorage, opts.StateTTL),
		Renders:   renders.NewStorage(renderStorage),
		Callbacks: callbacks.NewStorage(callbackStorage),
	}, nil
}

func connect(opts Options, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
