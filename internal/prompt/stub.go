package prompt

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrScriptExhausted is returned by Script once an answer kind runs out.
var ErrScriptExhausted = errors.New("prompt: no scripted answer left")

// Script is a Driver replaying canned answers in order, one queue per prompt
// kind. It records every Info message.
type Script struct {
	mu        sync.Mutex
	Inputs    []string
	Selects   []int
	Multi     [][]int
	Confirms  []bool
	TextAreas []string
	Messages  []string
	Asked     []string
}

func (s *Script) ask(message string) {
	s.Asked = append(s.Asked, message)
}

func (s *Script) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ask(cfg.Message)
	if len(s.Inputs) == 0 {
		return "", fmt.Errorf("%w: input %q", ErrScriptExhausted, cfg.Message)
	}
	v := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	return v, nil
}

func (s *Script) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ask(cfg.Message)
	if len(s.Confirms) == 0 {
		return false, fmt.Errorf("%w: confirm %q", ErrScriptExhausted, cfg.Message)
	}
	v := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return v, nil
}

func (s *Script) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ask(cfg.Message)
	if len(s.Selects) == 0 {
		return -1, fmt.Errorf("%w: select %q", ErrScriptExhausted, cfg.Message)
	}
	v := s.Selects[0]
	s.Selects = s.Selects[1:]
	return v, nil
}

func (s *Script) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ask(cfg.Message)
	if len(s.Multi) == 0 {
		return nil, fmt.Errorf("%w: multiselect %q", ErrScriptExhausted, cfg.Message)
	}
	v := s.Multi[0]
	s.Multi = s.Multi[1:]
	return v, nil
}

func (s *Script) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ask(cfg.Message)
	if len(s.TextAreas) == 0 {
		return "", fmt.Errorf("%w: textarea %q", ErrScriptExhausted, cfg.Message)
	}
	v := s.TextAreas[0]
	s.TextAreas = s.TextAreas[1:]
	return v, nil
}

func (s *Script) Info(_ context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, msg)
	return nil
}

var _ Driver = (*Script)(nil)
