package api

import (
	"io"
	"strings"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
)

// fakeDoer records requests and answers with a canned response or error.
type fakeDoer struct {
	mu       sync.Mutex
	status   int
	body     string
	err      error
	requests []*fhttp.Request
	payloads []string
}

func newFakeDoer(status int, body string) *fakeDoer {
	return &fakeDoer{status: status, body: body}
}

func newFailingDoer(err error) *fakeDoer {
	return &fakeDoer{err: err}
}

func (f *fakeDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		f.payloads = append(f.payloads, string(data))
	}
	if f.err != nil {
		return nil, f.err
	}
	return &fhttp.Response{
		StatusCode: f.status,
		Header:     make(fhttp.Header),
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Request:    req,
	}, nil
}

func (f *fakeDoer) lastRequest() *fhttp.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeDoer) lastPayload() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return ""
	}
	return f.payloads[len(f.payloads)-1]
}
