package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/monktastic/graphpipe-go/encoding"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/internal/hash"
	"github.com/monktastic/graphpipe-go/internal/options"
	"github.com/monktastic/graphpipe-go/message"
	"github.com/monktastic/graphpipe-go/tensor"
)

// Client executes inference calls against a model server.
type Client struct {
	transport     Transport
	logger        *slog.Logger
	hook          CallHook
	registry      *encoding.Registry
	defaultConfig string
}

// Option configures a Client.
type Option = options.Option[*Client]

// New returns a Client. Without WithTransport it posts requests with an HTTPTransport
// over http.DefaultClient.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		logger:   slog.Default(),
		registry: encoding.Default(),
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.transport == nil {
		t, err := NewHTTPTransport()
		if err != nil {
			return nil, err
		}
		c.transport = t
	}

	return c, nil
}

// WithTransport sets the transport used to send requests.
func WithTransport(t Transport) Option {
	return options.New(func(c *Client) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		c.transport = t

		return nil
	})
}

// WithLogger sets the logger for per-call debug records. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(c *Client) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger

		return nil
	})
}

// WithCallHook installs a hook observing every call.
func WithCallHook(hook CallHook) Option {
	return options.NoError(func(c *Client) {
		c.hook = hook
	})
}

// WithRegistry resolves response type tags through reg.
func WithRegistry(reg *encoding.Registry) Option {
	return options.New(func(c *Client) error {
		if reg == nil {
			return errors.New("registry must not be nil")
		}
		c.registry = reg

		return nil
	})
}

// WithDefaultConfig sets the config string sent when a call passes an empty one.
func WithDefaultConfig(config string) Option {
	return options.NoError(func(c *Client) {
		c.defaultConfig = config
	})
}

// Execute sends a single unnamed input and returns the first output.
func (c *Client) Execute(ctx context.Context, endpoint string, input tensor.Tensor) (tensor.Tensor, error) {
	outputs, err := c.ExecuteMulti(ctx, endpoint, []tensor.Tensor{input}, nil, nil, "")
	if err != nil {
		return tensor.Tensor{}, err
	}

	return first(outputs)
}

// ExecuteNamed sends a single input under inputName, requests outputName, and returns
// the first output. Empty names are omitted from the request.
func (c *Client) ExecuteNamed(ctx context.Context, endpoint string, input tensor.Tensor, inputName, outputName, config string) (tensor.Tensor, error) {
	outputs, err := c.ExecuteMulti(ctx, endpoint, []tensor.Tensor{input}, optionalName(inputName), optionalName(outputName), config)
	if err != nil {
		return tensor.Tensor{}, err
	}

	return first(outputs)
}

// ExecuteMulti sends inputs in one request and returns every output the server
// produced, in server order.
//
// inputNames may be empty; otherwise it must name every input. outputNames is passed
// through unchecked. An empty config falls back to WithDefaultConfig.
func (c *Client) ExecuteMulti(ctx context.Context, endpoint string, inputs []tensor.Tensor, inputNames, outputNames []string, config string) (outputs []tensor.Tensor, err error) {
	if len(inputs) == 0 {
		return nil, errs.ErrNoInputs
	}
	if len(inputNames) > 0 && len(inputNames) != len(inputs) {
		return nil, fmt.Errorf("%w: %d names for %d inputs", errs.ErrNameCountMismatch, len(inputNames), len(inputs))
	}

	if config == "" {
		config = c.defaultConfig
	}

	info := CallInfo{
		Endpoint:    endpoint,
		InputNames:  inputNames,
		OutputNames: outputNames,
		Inputs:      len(inputs),
		HasConfig:   config != "",
	}
	stats := &CallStats{}
	start := time.Now()

	ctx, token, hooked := c.startHook(ctx, info)
	defer func() {
		stats.Duration = time.Since(start)
		if err != nil {
			c.logger.DebugContext(ctx, "graphpipe call failed", "endpoint", endpoint, "error", err)
		}
		if hooked {
			c.endHook(ctx, token, info, stats, err)
		}
	}()

	for _, in := range inputs {
		stats.recordInputs(in.ElementCount())
	}

	body := message.BuildRequest(&message.Request{
		InputNames:  inputNames,
		OutputNames: outputNames,
		Config:      config,
		Inputs:      inputs,
	})
	stats.RequestBytes = int64(len(body))

	c.logger.DebugContext(ctx, "graphpipe request",
		"endpoint", endpoint,
		"inputs", len(inputs),
		"bytes", len(body),
		"digest", hash.Sum(body),
	)

	reply, err := c.transport.Send(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	stats.ResponseBytes = int64(len(reply))

	resp, err := message.ParseResponse(reply, message.WithRegistry(c.registry))
	if err != nil {
		return nil, err
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	for _, out := range resp.Outputs {
		stats.recordOutput(out.ElementCount())
	}

	c.logger.DebugContext(ctx, "graphpipe response",
		"endpoint", endpoint,
		"outputs", len(resp.Outputs),
		"bytes", len(reply),
		"digest", hash.Sum(reply),
	)

	return resp.Outputs, nil
}

func (c *Client) startHook(ctx context.Context, info CallInfo) (context.Context, HookToken, bool) {
	if c.hook == nil {
		return ctx, nil, false
	}

	hookCtx, token := ctx, HookToken(nil)
	func() {
		defer func() {
			if rv := recover(); rv != nil {
				c.logger.Error("call hook start panic", "err", rv)
			}
		}()
		hookCtx, token = c.hook.OnCallStart(ctx, info)
	}()

	if hookCtx == nil {
		hookCtx = ctx
	}

	return hookCtx, token, true
}

func (c *Client) endHook(ctx context.Context, token HookToken, info CallInfo, stats *CallStats, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			c.logger.Error("call hook end panic", "err", rv)
		}
	}()

	c.hook.OnCallEnd(ctx, token, info, stats, err)
}

func first(outputs []tensor.Tensor) (tensor.Tensor, error) {
	if len(outputs) == 0 {
		return tensor.Tensor{}, fmt.Errorf("%w: response has no output tensors", errs.ErrMalformedMessage)
	}

	return outputs[0], nil
}

func optionalName(name string) []string {
	if name == "" {
		return nil
	}

	return []string{name}
}
