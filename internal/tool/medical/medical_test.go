package medical

import (
	"context"

	"lingshu/internal/llm"
)

// stubGenerator records backend calls and returns a canned reply, its
// own prompt (echo mode), or a failure
type stubGenerator struct {
	calls   int
	lastReq *llm.GenerateRequest
	reply   string
	echo    bool
	err     error
}

func (s *stubGenerator) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	if s.echo {
		return req.Prompt, nil
	}
	return s.reply, nil
}
