package service

import (
	"context"
	"errors"
	"io"

	"console/internal/domain/entity"
)

// ErrChallengeNotFound is returned by CaptchaStore.Take when the id is unknown or already consumed.
var ErrChallengeNotFound = errors.New("captcha challenge not found")

// CaptchaStore keeps pending challenges. Take must be atomic per id so that at most one caller receives a challenge.
type CaptchaStore interface {
	Put(ctx context.Context, challenge *entity.Challenge) error

	// Take removes and returns the challenge.
	Take(ctx context.Context, id string) (*entity.Challenge, error)
}

// CaptchaRenderer draws a question as a vector image.
type CaptchaRenderer interface {
	Render(w io.Writer, question string) error
}
