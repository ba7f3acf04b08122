// Package errors provides the error handling strategies applied to worker failures
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// ErrorHandler decides what happens to an error raised inside a worker
type ErrorHandler interface {
	// HandleError handles the error, returns processed error or nil if handled
	HandleError(ctx context.Context, errCtx *ErrorContext) error

	// Name returns the name of the error handler
	Name() string

	// CanHandle determines if it can handle specific error
	CanHandle(err error) bool
}

// ErrorContext describes where and when an error occurred
type ErrorContext struct {
	// Error that occurred
	Error error

	// OperationName is the phase in which the error occurred, e.g. "acquire" or "hold"
	OperationName string

	// WorkerName identifies the worker that raised the error
	WorkerName string

	// Timestamp when the error occurred
	Timestamp time.Time

	// Metadata contains additional metadata information
	Metadata map[string]interface{}
}

// NewErrorContext creates a new error context
func NewErrorContext(err error, operationName, workerName string) *ErrorContext {
	return &ErrorContext{
		Error:         err,
		OperationName: operationName,
		WorkerName:    workerName,
		Timestamp:     time.Now(),
		Metadata:      make(map[string]interface{}),
	}
}

// ErrorHandlerStrategy defines error handling strategy types
type ErrorHandlerStrategy int

const (
	// ContinueOnErrorStrategy swallows errors and lets the worker carry on
	ContinueOnErrorStrategy ErrorHandlerStrategy = iota
	// FailFastStrategy surfaces errors to whoever joins the worker
	FailFastStrategy
)

// String returns the string representation of the strategy
func (s ErrorHandlerStrategy) String() string {
	switch s {
	case FailFastStrategy:
		return "FailFast"
	case ContinueOnErrorStrategy:
		return "ContinueOnError"
	default:
		return "Unknown"
	}
}

// ParseStrategy maps a strategy name back to its value
func ParseStrategy(name string) (ErrorHandlerStrategy, error) {
	switch name {
	case "FailFast", "failfast", "fail-fast":
		return FailFastStrategy, nil
	case "ContinueOnError", "continue", "continue-on-error":
		return ContinueOnErrorStrategy, nil
	default:
		return 0, fmt.Errorf("unknown error handling strategy %q", name)
	}
}

// FailFastHandler implements fail-fast error handling
type FailFastHandler struct {
	name string
}

// NewFailFastHandler creates a new fail-fast handler
func NewFailFastHandler() *FailFastHandler {
	return &FailFastHandler{
		name: FailFastStrategy.String(),
	}
}

// HandleError implements the ErrorHandler interface
func (h *FailFastHandler) HandleError(ctx context.Context, errCtx *ErrorContext) error {
	return errCtx.Error
}

// Name returns the handler name
func (h *FailFastHandler) Name() string {
	return h.name
}

// CanHandle always returns true
func (h *FailFastHandler) CanHandle(err error) bool {
	return true
}

// ContinueOnErrorHandler ignores errors and continues execution.
//
// Swallowing is a demo policy: an interrupted worker leaves no trace other
// than a missing output line. Do not reuse it where failures matter.
type ContinueOnErrorHandler struct {
	name          string
	ignoredErrors []error
	logger        *log.Logger
	mu            sync.RWMutex
}

// ContinueOnErrorConfig contains configuration for continue-on-error handler
type ContinueOnErrorConfig struct {
	// IgnoredErrors restricts swallowing to errors matching one of these via errors.Is.
	// Empty means every error is swallowed.
	IgnoredErrors []error
	// Logger receives a line per swallowed error; nil disables logging
	Logger *log.Logger
}

// NewContinueOnErrorHandler creates a continue-on-error handler
func NewContinueOnErrorHandler(config *ContinueOnErrorConfig) *ContinueOnErrorHandler {
	handler := &ContinueOnErrorHandler{
		name: ContinueOnErrorStrategy.String(),
	}

	if config != nil {
		handler.logger = config.Logger
		for _, err := range config.IgnoredErrors {
			if err != nil {
				handler.ignoredErrors = append(handler.ignoredErrors, err)
			}
		}
	}

	return handler
}

// HandleError implements the ErrorHandler interface
func (h *ContinueOnErrorHandler) HandleError(ctx context.Context, errCtx *ErrorContext) error {
	if !h.CanHandle(errCtx.Error) {
		return errCtx.Error
	}

	h.mu.RLock()
	logger := h.logger
	h.mu.RUnlock()

	if logger != nil {
		logger.Printf("[%s] ignored error in %s of %s: %v",
			errCtx.Timestamp.Format(time.RFC3339), errCtx.OperationName, errCtx.WorkerName, errCtx.Error)
	}

	return nil
}

// Name returns the handler name
func (h *ContinueOnErrorHandler) Name() string {
	return h.name
}

// CanHandle checks if the error is one this handler swallows
func (h *ContinueOnErrorHandler) CanHandle(err error) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.ignoredErrors) == 0 {
		return true
	}

	for _, ignored := range h.ignoredErrors {
		if stderrors.Is(err, ignored) {
			return true
		}
	}
	return false
}

// AddIgnoredError adds an error to the ignore list
func (h *ContinueOnErrorHandler) AddIgnoredError(err error) {
	if err == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.ignoredErrors = append(h.ignoredErrors, err)
}

// SetLogger replaces the logger used for swallowed errors
func (h *ContinueOnErrorHandler) SetLogger(logger *log.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = logger
}

// HandlerRegistry is a registry for error handlers
type HandlerRegistry struct {
	handlers       map[string]ErrorHandler
	defaultHandler ErrorHandler
	mu             sync.RWMutex
}

// NewHandlerRegistry creates a registry holding the built-in handlers.
// Swallowed errors are logged to logger; a nil logger discards them.
func NewHandlerRegistry(logger *log.Logger) *HandlerRegistry {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	failFastHandler := NewFailFastHandler()
	continueOnErrorHandler := NewContinueOnErrorHandler(&ContinueOnErrorConfig{Logger: logger})

	registry := &HandlerRegistry{
		handlers:       make(map[string]ErrorHandler),
		defaultHandler: continueOnErrorHandler,
	}

	registry.RegisterHandler(failFastHandler)
	registry.RegisterHandler(continueOnErrorHandler)

	return registry
}

// RegisterHandler registers an error handler
func (r *HandlerRegistry) RegisterHandler(handler ErrorHandler) error {
	if handler == nil {
		return fmt.Errorf("cannot register nil handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := handler.Name()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler with name %s already exists", name)
	}

	r.handlers[name] = handler
	return nil
}

// GetHandler gets an error handler by name
func (r *HandlerRegistry) GetHandler(name string) (ErrorHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[name]
	if !exists {
		return nil, fmt.Errorf("handler with name %s not found", name)
	}

	return handler, nil
}

// ForStrategy gets the handler registered for a strategy
func (r *HandlerRegistry) ForStrategy(strategy ErrorHandlerStrategy) (ErrorHandler, error) {
	return r.GetHandler(strategy.String())
}

// SetDefaultHandler sets the default error handler
func (r *HandlerRegistry) SetDefaultHandler(handler ErrorHandler) error {
	if handler == nil {
		return fmt.Errorf("cannot set nil as default handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaultHandler = handler
	return nil
}

// GetDefaultHandler gets the default error handler
func (r *HandlerRegistry) GetDefaultHandler() ErrorHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defaultHandler
}
