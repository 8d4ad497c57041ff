// Package devices enrolls mirror clients and authenticates their requests.
//
// A device is anonymous: enrollment hands out a random id and a signed token
// whose subject is that id. Requests are accepted while the token is valid
// and the id is still on record.
package devices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/server/auth"
	"github.com/google/uuid"
)

type Enrollment struct {
	DeviceID string
	Token    string
}

type Service struct {
	repo          Repository
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewService(repo Repository, secretKey string, tokenValidity time.Duration) *Service {
	return &Service{
		repo:          repo,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}
}

func (s *Service) Enroll(ctx context.Context) (*Enrollment, error) {
	id := uuid.NewString()

	if err := s.repo.Create(ctx, id); err != nil {
		return nil, fmt.Errorf("error creating device: %w", err)
	}

	token, err := auth.GenerateToken(id, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &Enrollment{DeviceID: id, Token: token}, nil
}

// Authenticate returns the device id carried by token. Unknown devices get
// common.ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	id, err := auth.GetDeviceIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", err
	}

	if err := s.repo.Touch(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", err
	}

	return id, nil
}
