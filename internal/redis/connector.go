package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/secrets"
)

// ConnectOptions defines the client settings and the startup retry policy.
type ConnectOptions struct {
	Credentials    secrets.StoreCredentials // address and auth, from the secrets file or env
	DialTimeout    time.Duration            // Redis dial timeout
	ReadTimeout    time.Duration            // Redis read timeout
	WriteTimeout   time.Duration            // Redis write timeout
	PoolSize       int                      // Redis connection pool size
	ConnectTimeout time.Duration            // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration            // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration            // max wait between retries (ex: 10s)
	PingTimeout    time.Duration            // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int                      // warn after this many attempts
}

// Validate rejects a policy that would never connect or never stop trying.
func (o ConnectOptions) Validate() error {
	switch {
	case o.Credentials.Addr == "":
		return fmt.Errorf("redis address is required")
	case o.ConnectTimeout <= 0:
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", o.ConnectTimeout)
	case o.RetryInterval <= 0:
		return fmt.Errorf("RetryInterval must be > 0, got %v", o.RetryInterval)
	case o.MaxWait <= 0:
		return fmt.Errorf("MaxWait must be > 0, got %v", o.MaxWait)
	case o.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", o.PingTimeout)
	case o.WarnThreshold < 0:
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold)
	}
	return nil
}

// Connect builds the one store client of the process and waits until Redis
// answers a PING, backing off exponentially between attempts. The caller owns
// the returned client and must Close it.
func Connect(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.Validate(); err != nil {
		log.Error("invalid redis connect options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Credentials.Addr,
		Username:     opts.Credentials.Username,
		Password:     opts.Credentials.Password,
		DB:           opts.Credentials.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	if err := waitForPing(ctx, client, opts, log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func waitForPing(ctx context.Context, client *redis.Client, opts ConnectOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	addr := opts.Credentials.Addr
	log.Info("connecting to redis",
		logger.String("addr", addr),
		logger.Duration("timeout", opts.ConnectTimeout))

	start := time.Now()
	wait := opts.RetryInterval

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			logConnected(log, addr, attempt, time.Since(start))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error("redis unavailable - giving up",
				logger.String("addr", addr),
				logger.Int("attempts", attempt),
				logger.Duration("timeout", opts.ConnectTimeout),
				logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				addr, attempt, opts.ConnectTimeout, err)

		case <-timer.C:
			logRetry(log, addr, attempt, wait, opts.WarnThreshold, err)
			// Exponential backoff with cap
			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}

func logConnected(log logger.Logger, addr string, attempts int, elapsed time.Duration) {
	if attempts > 1 {
		log.Warn("connected to redis after retry",
			logger.String("addr", addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	log.Info("connected to redis", logger.String("addr", addr))
}

func logRetry(log logger.Logger, addr string, attempt int, nextRetry time.Duration, warnThreshold int, err error) {
	if attempt <= warnThreshold {
		log.Warn("redis connection failed, retrying",
			logger.String("addr", addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
		return
	}
	log.Error("redis still unavailable - connection attempts failing",
		logger.String("addr", addr),
		logger.Int("attempt", attempt),
		logger.Duration("next_retry_in", nextRetry),
		logger.Error(err))
}
