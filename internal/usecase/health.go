package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"ragchat/internal/domain"
	"ragchat/internal/port"
)

// BackendHealth composes the readiness of the knowledge store and the
// generation backend into one report, mirroring what the HTTP /health
// endpoint exposes.
type BackendHealth struct {
	kb  *KnowledgeBase
	gen port.Generator
}

func NewBackendHealth(kb *KnowledgeBase, gen port.Generator) *BackendHealth {
	return &BackendHealth{kb: kb, gen: gen}
}

func (h *BackendHealth) Health(ctx context.Context) (domain.Health, error) {
	health := domain.Health{
		Status:   domain.Healthy,
		Services: map[string]string{},
	}

	if _, err := h.kb.Count(); err != nil {
		health.Services["vector_db"] = "unhealthy"
		health.Status = "unhealthy"
	} else {
		health.Services["vector_db"] = domain.Healthy
	}

	models, err := h.gen.ListModels(ctx)
	if err != nil || len(models) == 0 {
		health.Services["llm_models"] = "unhealthy"
		health.Status = "unhealthy"
	} else {
		health.Services["llm_models"] = domain.Healthy
		health.ModelsAvailable = len(models)
	}

	if health.Status != domain.Healthy {
		return health, fmt.Errorf("backend unhealthy: %v", health.Services)
	}
	return health, nil
}

// WaitReady probes the backend until it reports healthy, with a fixed
// attempt count and delay. This is the only retry loop in the pipeline;
// steady-state failures degrade instead of retrying.
func WaitReady(ctx context.Context, checker port.HealthChecker, attempts int, delay time.Duration, logger *log.Logger) (domain.Health, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		health, err := checker.Health(ctx)
		if err == nil {
			logger.Info("backend ready",
				"attempt", i,
				"models_available", health.ModelsAvailable)
			return health, nil
		}
		lastErr = err
		logger.Warn("backend not ready", "attempt", i, "of", attempts, "error", err)

		if i < attempts {
			select {
			case <-ctx.Done():
				return domain.Health{}, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return domain.Health{}, fmt.Errorf("backend unreachable after %d attempts: %w", attempts, lastErr)
}
