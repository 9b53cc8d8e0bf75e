package chat

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	apierrors "github.com/diogo/chatpanel/internal/errors"
	"github.com/diogo/chatpanel/internal/models"
)

// ErrSubmitting is returned when a submission starts while another is in flight.
var ErrSubmitting = errors.New("a message is already being sent")

// Sender delivers the conversation to the backend and returns its reply.
type Sender interface {
	Send(ctx context.Context, messages []models.Message) (models.Message, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, messages []models.Message) (models.Message, error)

func (f SenderFunc) Send(ctx context.Context, messages []models.Message) (models.Message, error) {
	return f(ctx, messages)
}

// Outcome describes how a submission ended.
type Outcome struct {
	// Reply is the appended assistant message when Err is nil.
	Reply models.Message
	// Err is the request failure, if any. It has already been reported
	// through the Notifier.
	Err error
	// Count is the length of the conversation after the submission.
	Count int
}

// OK reports whether the reply was appended.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Orchestrator owns the conversation and the submit/response cycle.
type Orchestrator struct {
	sender    Sender
	notifier  Notifier
	refresher Refresher
	logger    *zap.Logger

	mu       sync.Mutex
	messages []models.Message
	form     form
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sets the notification service.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithRefresher sets the data refresh service.
func WithRefresher(r Refresher) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.refresher = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMinPromptLength overrides the minimum prompt length.
func WithMinPromptLength(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.form.minLength = n
		}
	}
}

// NewOrchestrator creates an Orchestrator with an empty conversation.
func NewOrchestrator(sender Sender, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sender:    sender,
		notifier:  nopNotifier{},
		refresher: nopRefresher{},
		logger:    zap.NewNop(),
		messages:  []models.Message{},
		form:      form{minLength: models.MinPromptLength},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Seed appends msgs to the conversation, e.g. a sample transcript.
func (o *Orchestrator) Seed(msgs []models.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msgs...)
}

// Messages returns a copy of the conversation.
func (o *Orchestrator) Messages() []models.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return models.CloneMessages(o.messages)
}

// Len returns the number of messages in the conversation.
func (o *Orchestrator) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}

// LastReply returns the most recent assistant message.
func (o *Orchestrator) LastReply() (models.Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].Role == models.RoleAssistant {
			return o.messages[i], true
		}
	}
	return models.Message{}, false
}

// SetInput replaces the current input value.
func (o *Orchestrator) SetInput(v string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.setValue(v)
}

// Input returns the current input value.
func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form.value
}

// ResetInput clears the input value and any field error.
func (o *Orchestrator) ResetInput() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.reset()
}

// FieldError returns the last validation error, or nil.
func (o *Orchestrator) FieldError() *FieldError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form.fieldErr
}

// State returns the submission lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form.state
}

// Loading reports whether a submission is in flight.
func (o *Orchestrator) Loading() bool {
	return o.State() == StateSubmitting
}

// MinPromptLength returns the configured minimum prompt length.
func (o *Orchestrator) MinPromptLength() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form.minLength
}

// Begin validates prompt, appends it as a user message and enters the
// submitting state. It returns the full conversation to send. On a
// validation failure the field error is recorded and the conversation is
// left untouched.
func (o *Orchestrator) Begin(prompt string) ([]models.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// the form belongs to the in-flight submission until Complete
	if o.form.state == StateSubmitting {
		return nil, ErrSubmitting
	}

	o.form.value = prompt

	valid, ferr := Validate(prompt, o.form.minLength)
	if ferr != nil {
		o.form.fieldErr = ferr
		o.logger.Debug("prompt rejected", zap.String("reason", ferr.Message))
		return nil, ferr
	}
	o.form.fieldErr = nil

	o.messages = append(o.messages, models.NewUserMessage(valid.String()))
	o.form.state = StateSubmitting

	o.logger.Debug("submission started", zap.Int("messages", len(o.messages)))
	return models.CloneMessages(o.messages), nil
}

// Complete merges the result of the request started by Begin. A reply is
// appended and the input cleared; a failure is reported through the Notifier
// and leaves both the conversation and the input as they are. The Refresher
// runs in every case.
func (o *Orchestrator) Complete(reply models.Message, err error) Outcome {
	o.mu.Lock()
	out := Outcome{Err: err}
	if err == nil {
		if reply.Role == "" {
			reply.Role = models.RoleAssistant
		}
		o.messages = append(o.messages, reply)
		o.form.reset()
		out.Reply = reply
	}
	o.form.state = StateIdle
	out.Count = len(o.messages)
	o.mu.Unlock()

	if err != nil {
		o.logger.Warn("chat request failed",
			zap.Error(err),
			zap.Int("status", apierrors.GetHTTPStatus(err)),
		)
		o.notifier.Notify(FailureNotification())
	} else {
		o.logger.Debug("reply appended", zap.Int("messages", out.Count))
	}

	o.refresher.Refresh()
	return out
}

// Submit runs a full submission synchronously. Validation failures and
// ErrSubmitting are returned as errors; request failures are reported in
// the Outcome after being passed to the Notifier.
func (o *Orchestrator) Submit(ctx context.Context, prompt string) (Outcome, error) {
	pending, err := o.Begin(prompt)
	if err != nil {
		return Outcome{Count: o.Len()}, err
	}

	reply, sendErr := o.send(ctx, pending)
	return o.Complete(reply, sendErr), nil
}

// send calls the Sender, turning a panic into a request failure so the
// lifecycle always returns to idle.
func (o *Orchestrator) send(ctx context.Context, pending []models.Message) (reply models.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("sender panicked", zap.Any("panic", r))
			err = apierrors.NewNetworkError("send chat", "", errors.New("sender panicked"))
		}
	}()
	if o.sender == nil {
		return models.Message{}, apierrors.NewNetworkError("send chat", "", errors.New("no sender configured"))
	}
	reply, err = o.sender.Send(ctx, pending)
	if err != nil && !apierrors.IsRequestFailure(err) {
		// a Sender outside internal/api may return untyped errors
		err = apierrors.NewNetworkError("send chat", "", err)
	}
	return reply, err
}

// SendFunc returns a function that performs the network call for pending,
// for callers that run the request outside the orchestrator (e.g. a UI
// command) and report back through Complete.
func (o *Orchestrator) SendFunc(ctx context.Context, pending []models.Message) func() (models.Message, error) {
	return func() (models.Message, error) {
		return o.send(ctx, pending)
	}
}
