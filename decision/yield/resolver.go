package yield

import (
	"context"

	"github.com/rs/zerolog"
)

// Resolver asks a primary provider and falls back to the local approximation
// with the same request whenever the primary has no answer.
type Resolver struct {
	primary Provider
	local   LocalEstimator
	logger  zerolog.Logger
}

// NewResolver creates a resolver. A nil primary always uses the local estimator.
func NewResolver(primary Provider, local LocalEstimator, logger zerolog.Logger) *Resolver {
	return &Resolver{primary: primary, local: local, logger: logger}
}

// Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, req Request) Estimate {
	if r.primary == nil {
		est := r.local.Compute(req)
		est.Note = "offline mode: using local approximation"
		return est
	}

	est, err := r.primary.Estimate(ctx, req)
	if err == nil {
		return est
	}

	r.logger.Info().
		Err(err).
		Float64("lat", req.Latitude).
		Float64("lon", req.Longitude).
		Msg("irradiance lookup failed, using local approximation")

	fallback := r.local.Compute(req)
	fallback.Fallback = true
	fallback.Note = "satellite data unavailable: " + err.Error()
	return fallback
}

// Estimate implements Provider so a Resolver can stand in wherever one is expected.
func (r *Resolver) Estimate(ctx context.Context, req Request) (Estimate, error) {
	return r.Resolve(ctx, req), nil
}
