package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNotConnected is returned when publishing on a closed client
var ErrNotConnected = errors.New("not connected to RabbitMQ")

// Config holds RabbitMQ connection and publish configuration
type Config struct {
	Host               string
	Port               int
	User               string
	Password           string
	VHost              string
	ExchangeName       string
	ExchangeType       string
	ExchangeDurable    bool
	ExchangeAutoDelete bool
	RetryAttempts      int
	RetryInterval      time.Duration
	Heartbeat          time.Duration
	ConnectionTimeout  time.Duration
	PublishRetries     int
	PublishRetryDelay  time.Duration
	PublishBackoffMult float64
}

// publisher is the part of *amqp.Channel the client publishes through
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Client publishes outcome events to a RabbitMQ exchange
type Client struct {
	config      *Config
	conn        *amqp.Connection
	channel     publisher
	logger      *slog.Logger
	isConnected bool
}

// NewClient connects, declares the exchange and returns a ready client
func NewClient(ctx context.Context, config *Config, logger *slog.Logger) (*Client, error) {
	client := &Client{
		config: config,
		logger: logger,
	}

	if err := client.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ client: %w", err)
	}

	return client, nil
}

// dsn builds the AMQP URL; credentials and vhost are escaped
func (c *Config) dsn() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.VHost,
	}
	if c.VHost == "/" || c.VHost == "" {
		u.Path = "/"
	}
	return u.String()
}

// connect establishes connection to RabbitMQ with retry logic
func (c *Client) connect(ctx context.Context) error {
	amqpConfig := amqp.Config{
		Heartbeat: c.config.Heartbeat,
		Locale:    "en_US",
	}
	if c.config.ConnectionTimeout > 0 {
		amqpConfig.Dial = amqp.DefaultDial(c.config.ConnectionTimeout)
	}

	attempts := max(c.config.RetryAttempts, 1)

	var (
		conn *amqp.Connection
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		c.logger.Info("Connecting to RabbitMQ",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
		)

		conn, err = amqp.DialConfig(c.config.dsn(), amqpConfig)
		if err == nil {
			c.logger.Info("Successfully connected to RabbitMQ")
			break
		}

		c.logger.Error("Failed to connect to RabbitMQ",
			slog.Any("error", err),
			slog.Int("attempt", attempt),
		)

		if attempt < attempts {
			if sleepErr := sleep(ctx, c.config.RetryInterval); sleepErr != nil {
				return sleepErr
			}
		}
	}

	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	if err := c.declareExchange(channel); err != nil {
		channel.Close()
		conn.Close()
		return err
	}

	c.conn = conn
	c.channel = channel
	c.isConnected = true

	c.logger.Info("RabbitMQ publisher initialized",
		slog.String("exchange", c.config.ExchangeName),
		slog.String("type", c.config.ExchangeType),
	)

	return nil
}

func (c *Client) declareExchange(channel *amqp.Channel) error {
	exchangeType := c.config.ExchangeType
	if exchangeType == "" {
		exchangeType = amqp.ExchangeTopic
	}

	err := channel.ExchangeDeclare(
		c.config.ExchangeName,       // name
		exchangeType,                // type
		c.config.ExchangeDurable,    // durable
		c.config.ExchangeAutoDelete, // auto-deleted
		false,                       // internal
		false,                       // no-wait
		nil,                         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// Close closes the RabbitMQ connection
func (c *Client) Close() error {
	c.logger.Info("Closing RabbitMQ connection")

	c.isConnected = false

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("Failed to close RabbitMQ channel",
				slog.Any("error", err),
			)
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("Failed to close RabbitMQ connection",
				slog.Any("error", err),
			)
			return err
		}
	}

	c.logger.Info("RabbitMQ connection closed successfully")
	return nil
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	if !c.isConnected {
		return false
	}
	return c.conn == nil || !c.conn.IsClosed()
}

// PublishEvent publishes a JSON event with the given routing key, retrying
// with exponential backoff.
func (c *Client) PublishEvent(ctx context.Context, routingKey string, body []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	maxRetries := c.config.PublishRetries
	if maxRetries <= 0 {
		maxRetries = 3 // default
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := c.channel.PublishWithContext(
			ctx,
			c.config.ExchangeName, // exchange
			routingKey,            // routing key
			false,                 // mandatory
			false,                 // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now(),
			},
		)

		if err == nil {
			if attempt > 0 {
				c.logger.Info("Successfully published event after retry",
					slog.String("routing_key", routingKey),
					slog.Int("attempt", attempt+1),
				)
			} else {
				c.logger.Debug("Event published",
					slog.String("routing_key", routingKey),
					slog.Int("body_size", len(body)),
				)
			}
			return nil
		}

		lastErr = err

		if attempt < maxRetries {
			delay := c.backoffDelay(attempt)
			c.logger.Warn("Failed to publish event, retrying...",
				slog.String("routing_key", routingKey),
				slog.Int("attempt", attempt+1),
				slog.Int("max_retries", maxRetries),
				slog.Duration("retry_after", delay),
				slog.Any("error", err),
			)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("failed to publish event after %d attempts: %w", maxRetries+1, lastErr)
}

// backoffDelay returns base * mult^attempt
func (c *Client) backoffDelay(attempt int) time.Duration {
	baseDelay := c.config.PublishRetryDelay
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	backoffMult := c.config.PublishBackoffMult
	if backoffMult <= 0 {
		backoffMult = 2.0
	}

	return time.Duration(float64(baseDelay) * math.Pow(backoffMult, float64(attempt)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
