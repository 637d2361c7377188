package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/avvvet/concierge-intent/internal/llm"
	"github.com/avvvet/concierge-intent/internal/models"
	"github.com/avvvet/concierge-intent/internal/pms"
	"github.com/avvvet/concierge-intent/internal/transcript"
)

// fakeProvider answers classifier calls (JSON mode) and reply calls separately
type fakeProvider struct {
	mu       sync.Mutex
	classify string
	reply    string
	classErr error
	replyErr error
	requests []*llm.LLMRequest
}

func (f *fakeProvider) Complete(_ context.Context, req *llm.LLMRequest) (*llm.LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if req.JSONMode {
		if f.classErr != nil {
			return nil, f.classErr
		}
		return &llm.LLMResponse{Content: f.classify}, nil
	}
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	return &llm.LLMResponse{Content: f.reply}, nil
}

func (f *fakeProvider) calls() []*llm.LLMRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*llm.LLMRequest(nil), f.requests...)
}

// fakeGateway returns a fixed result and counts calls per operation
type fakeGateway struct {
	mu     sync.Mutex
	result pms.Result
	calls  map[string]int
	params []models.RequestParams
}

func newFakeGateway(result pms.Result) *fakeGateway {
	return &fakeGateway{result: result, calls: map[string]int{}}
}

func (g *fakeGateway) hit(op string, params *models.RequestParams) pms.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
	if params != nil {
		g.params = append(g.params, *params)
	}
	return g.result
}

func (g *fakeGateway) GetAvailability(_ context.Context, params models.RequestParams) pms.Result {
	return g.hit(pms.OpAvailability, &params)
}

func (g *fakeGateway) GetPricing(_ context.Context, params models.RequestParams) pms.Result {
	return g.hit(pms.OpPricing, &params)
}

func (g *fakeGateway) GetRooms(context.Context) pms.Result {
	return g.hit(pms.OpRooms, nil)
}

func (g *fakeGateway) GetPolicies(context.Context) pms.Result {
	return g.hit(pms.OpPolicies, nil)
}

func (g *fakeGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

// fakeStore records saved exchanges, optionally failing
type fakeStore struct {
	mu    sync.Mutex
	saved []transcript.Exchange
	err   error
}

func (s *fakeStore) Save(_ context.Context, ex *transcript.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	ex.ID = "ex-1"
	s.saved = append(s.saved, *ex)
	return nil
}

func (s *fakeStore) Recent(context.Context, int) ([]transcript.Exchange, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) Close() error { return nil }
