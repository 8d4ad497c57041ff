// Package documents stores the mirror's JSON documents and notifies watchers
// when one is overwritten.
package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

var ErrInvalidValue = errors.New("document value is not valid JSON")

type Service struct {
	repo Repository
	hub  *Hub
	log  logging.Logger
}

func NewService(repo Repository, log logging.Logger) *Service {
	return &Service{
		repo: repo,
		hub:  NewHub(),
		log:  log.With("module", "documents"),
	}
}

func (s *Service) Get(ctx context.Context, path string) (*Document, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, path)
}

// Put replaces the whole document at path. There is no version check: the
// last write wins.
func (s *Service) Put(ctx context.Context, path string, value []byte, deviceID string) (*Document, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	if !json.Valid(value) {
		return nil, ErrInvalidValue
	}

	d, err := s.repo.Put(ctx, path, value, deviceID)
	if err != nil {
		return nil, fmt.Errorf("error storing document: %w", err)
	}

	s.hub.Publish(*d)
	s.log.Debug(ctx, "document stored", "path", path, "version", d.Version, "device", deviceID)

	return d, nil
}

// Watch subscribes to path and queues its current value, or a Version 0
// document with a nil Value when the path was never written. The caller
// must Close the subscription.
func (s *Service) Watch(ctx context.Context, path string) (*Subscription, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	sub := s.hub.Subscribe(path)

	d, err := s.repo.Get(ctx, path)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		d = &Document{Path: path}
	case err != nil:
		sub.Close()
		return nil, err
	}

	s.hub.Offer(sub, *d)
	return sub, nil
}

// Watchers reports how many subscriptions are open on path.
func (s *Service) Watchers(path string) int {
	return s.hub.Subscribers(path)
}
