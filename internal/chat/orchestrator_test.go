package chat

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	apierrors "github.com/diogo/chatpanel/internal/errors"
	"github.com/diogo/chatpanel/internal/models"
)

// fakeSender records calls and returns a canned reply or error.
type fakeSender struct {
	mu    sync.Mutex
	reply models.Message
	err   error
	panic bool
	calls [][]models.Message
}

func (f *fakeSender) Send(_ context.Context, msgs []models.Message) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msgs)
	if f.panic {
		panic("boom")
	}
	return f.reply, f.err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	got []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.got = append(r.got, n)
}

type countingRefresher struct {
	count int
}

func (c *countingRefresher) Refresh() {
	c.count++
}

func newTestOrchestrator(s Sender) (*Orchestrator, *recordingNotifier, *countingRefresher) {
	n := &recordingNotifier{}
	r := &countingRefresher{}
	return NewOrchestrator(s, WithNotifier(n), WithRefresher(r)), n, r
}

func TestSubmitSuccess(t *testing.T) {
	sender := &fakeSender{reply: models.NewAssistantMessage("hi")}
	o, n, r := newTestOrchestrator(sender)

	o.SetInput("hello")
	out, err := o.Submit(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !out.OK() {
		t.Fatalf("Outcome.Err = %v", out.Err)
	}

	want := []models.Message{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi"},
	}
	if got := o.Messages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Messages() = %+v, want %+v", got, want)
	}
	if o.Input() != "" {
		t.Errorf("Input() = %q, want cleared", o.Input())
	}
	if len(n.got) != 0 {
		t.Errorf("unexpected notifications: %+v", n.got)
	}
	if r.count != 1 {
		t.Errorf("Refresh called %d times, want 1", r.count)
	}
	if o.Loading() {
		t.Error("expected idle after completion")
	}
	if out.Count != 2 {
		t.Errorf("Outcome.Count = %d, want 2", out.Count)
	}
}

func TestSubmitSendsFullConversation(t *testing.T) {
	sender := &fakeSender{reply: models.NewAssistantMessage("first")}
	o, _, _ := newTestOrchestrator(sender)

	if _, err := o.Submit(context.Background(), "one"); err != nil {
		t.Fatal(err)
	}
	sender.reply = models.NewAssistantMessage("second")
	if _, err := o.Submit(context.Background(), "two"); err != nil {
		t.Fatal(err)
	}

	if sender.callCount() != 2 {
		t.Fatalf("Send called %d times, want 2", sender.callCount())
	}
	second := sender.calls[1]
	want := []models.Message{
		models.NewUserMessage("one"),
		models.NewAssistantMessage("first"),
		models.NewUserMessage("two"),
	}
	if !reflect.DeepEqual(second, want) {
		t.Errorf("second request = %+v, want %+v", second, want)
	}
	if o.Len() != 4 {
		t.Errorf("Len() = %d, want 4", o.Len())
	}
}

func TestSubmitTooShort(t *testing.T) {
	sender := &fakeSender{}
	o, n, r := newTestOrchestrator(sender)

	out, err := o.Submit(context.Background(), "a")
	if !apierrors.IsValidationError(err) {
		t.Fatalf("Submit() error = %v, want validation error", err)
	}
	if len(o.Messages()) != 0 {
		t.Errorf("Messages() = %+v, want empty", o.Messages())
	}
	if sender.callCount() != 0 {
		t.Error("no network call expected")
	}
	if o.FieldError() == nil {
		t.Error("expected the field error to be recorded")
	}
	if len(n.got) != 0 || r.count != 0 {
		t.Error("validation failures must not notify or refresh")
	}
	if out.Count != 0 {
		t.Errorf("Outcome.Count = %d, want 0", out.Count)
	}
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name   string
		sender *fakeSender
	}{
		{"non-200 status", &fakeSender{err: apierrors.NewAPIError(500, "ep", "server error")}},
		{"network error", &fakeSender{err: apierrors.NewNetworkError("send chat", "ep", errors.New("refused"))}},
		{"parse error", &fakeSender{err: apierrors.NewParseError("bad json", "")}},
		{"sender panic", &fakeSender{panic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, n, r := newTestOrchestrator(tt.sender)
			o.SetInput("hello")

			out, err := o.Submit(context.Background(), "hello")
			if err != nil {
				t.Fatalf("Submit() error = %v, want nil", err)
			}
			if out.OK() {
				t.Fatal("expected a failed outcome")
			}

			want := []models.Message{models.NewUserMessage("hello")}
			if got := o.Messages(); !reflect.DeepEqual(got, want) {
				t.Errorf("Messages() = %+v, want %+v", got, want)
			}
			if len(n.got) != 1 || n.got[0] != FailureNotification() {
				t.Errorf("notifications = %+v, want one failure notification", n.got)
			}
			if o.Input() != "hello" {
				t.Errorf("Input() = %q, want it kept", o.Input())
			}
			if r.count != 1 {
				t.Errorf("Refresh called %d times, want 1", r.count)
			}
			if o.State() != StateIdle {
				t.Errorf("State() = %v, want idle", o.State())
			}
		})
	}
}

func TestSubmitTypesUntypedSenderErrors(t *testing.T) {
	cause := errors.New("connection reset")
	o, n, _ := newTestOrchestrator(&fakeSender{err: cause})

	out, err := o.Submit(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !apierrors.IsRequestFailure(out.Err) {
		t.Errorf("Outcome.Err = %v, want a request failure", out.Err)
	}
	if !errors.Is(out.Err, cause) {
		t.Errorf("Outcome.Err = %v, want it to wrap the sender error", out.Err)
	}
	if len(n.got) != 1 {
		t.Errorf("notifications = %d, want 1", len(n.got))
	}
}

func TestFailureDoesNotRollBack(t *testing.T) {
	sender := &fakeSender{err: apierrors.NewAPIError(502, "ep", "bad gateway")}
	o, _, _ := newTestOrchestrator(sender)

	_, _ = o.Submit(context.Background(), "first")
	sender.err = nil
	sender.reply = models.NewAssistantMessage("ok")
	_, _ = o.Submit(context.Background(), "second")

	msgs := o.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if !msgs[0].IsUser() || !msgs[1].IsUser() {
		t.Errorf("expected two consecutive user messages, got %+v", msgs)
	}
}

func TestBeginRejectsConcurrentSubmission(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeSender{})

	if _, err := o.Begin("hello"); err != nil {
		t.Fatalf("first Begin() error = %v", err)
	}
	if !o.Loading() {
		t.Fatal("expected loading after Begin")
	}
	if _, err := o.Begin("again"); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("second Begin() error = %v, want ErrSubmitting", err)
	}
	if o.Len() != 1 {
		t.Errorf("Len() = %d, want 1", o.Len())
	}

	o.Complete(models.NewAssistantMessage("done"), nil)
	if o.Loading() {
		t.Error("expected idle after Complete")
	}
}

func TestBeginWhileSubmittingKeepsForm(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{"valid prompt", "second question"},
		{"too short", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _, _ := newTestOrchestrator(&fakeSender{})
			if _, err := o.Begin("hello"); err != nil {
				t.Fatalf("first Begin() error = %v", err)
			}

			if _, err := o.Begin(tt.prompt); !errors.Is(err, ErrSubmitting) {
				t.Fatalf("Begin(%q) error = %v, want ErrSubmitting", tt.prompt, err)
			}
			if got := o.Input(); got != "hello" {
				t.Errorf("Input() = %q, want %q", got, "hello")
			}
			if o.FieldError() != nil {
				t.Errorf("FieldError() = %v, want nil", o.FieldError())
			}
			if o.Len() != 1 {
				t.Errorf("Len() = %d, want 1", o.Len())
			}
		})
	}
}

func TestCompleteDefaultsMissingRole(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeSender{})
	if _, err := o.Begin("hello"); err != nil {
		t.Fatal(err)
	}
	out := o.Complete(models.Message{Content: "no role"}, nil)
	if out.Reply.Role != models.RoleAssistant {
		t.Errorf("Reply.Role = %q, want assistant", out.Reply.Role)
	}
}

func TestRefreshDoesNotMutateConversation(t *testing.T) {
	var o *Orchestrator
	var during []models.Message
	refresher := RefresherFunc(func() {
		during = o.Messages()
	})
	o = NewOrchestrator(&fakeSender{reply: models.NewAssistantMessage("hi")}, WithRefresher(refresher))

	if _, err := o.Submit(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(during, o.Messages()) {
		t.Errorf("conversation changed across refresh: %+v vs %+v", during, o.Messages())
	}
}

func TestSetInputClearsStaleFieldError(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeSender{})

	_, _ = o.Begin("a")
	if o.FieldError() == nil {
		t.Fatal("expected field error")
	}
	o.SetInput("a")
	if o.FieldError() == nil {
		t.Error("field error should remain while the value is still invalid")
	}
	o.SetInput("ab")
	if o.FieldError() != nil {
		t.Error("field error should clear once the value is valid")
	}
}

func TestWithMinPromptLength(t *testing.T) {
	o := NewOrchestrator(&fakeSender{}, WithMinPromptLength(5))
	if o.MinPromptLength() != 5 {
		t.Fatalf("MinPromptLength() = %d", o.MinPromptLength())
	}
	if _, err := o.Begin("four"); !apierrors.IsValidationError(err) {
		t.Errorf("Begin() error = %v, want validation error", err)
	}
}

func TestSeedAndLastReply(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeSender{})
	if _, ok := o.LastReply(); ok {
		t.Error("expected no reply in an empty conversation")
	}

	o.Seed(models.SampleTranscript())
	if o.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", o.Len())
	}
	last, ok := o.LastReply()
	if !ok || last.Role != models.RoleAssistant {
		t.Errorf("LastReply() = %+v, %v", last, ok)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeSender{})
	o.Seed([]models.Message{models.NewUserMessage("hello")})

	msgs := o.Messages()
	msgs[0].Content = "mutated"
	if o.Messages()[0].Content != "hello" {
		t.Error("Messages() exposed internal state")
	}
}

func TestSendFuncWithNilSender(t *testing.T) {
	o := NewOrchestrator(nil)
	pending, err := o.Begin("hello")
	if err != nil {
		t.Fatal(err)
	}
	_, sendErr := o.SendFunc(context.Background(), pending)()
	if !apierrors.IsNetworkError(sendErr) {
		t.Errorf("error = %v, want network error", sendErr)
	}
	out := o.Complete(models.Message{}, sendErr)
	if out.OK() {
		t.Error("expected failure outcome")
	}
}
