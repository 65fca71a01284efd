package usecase

import "context"

// CaptchaOutput is what the client renders. The answer stays on the server.
type CaptchaOutput struct {
	ID  string `json:"id"`
	SVG string `json:"svg"`
}

// CaptchaUsecase issues and checks single-use arithmetic challenges.
type CaptchaUsecase interface {
	Generate(ctx context.Context) (*CaptchaOutput, error)

	// Verify consumes the challenge whatever the outcome.
	Verify(ctx context.Context, id, answer string) bool
}
