package housekeeping

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler ejecuta periódicamente la purga de cuentas no verificadas.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	log      zerolog.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// NewScheduler crea el job con el intervalo dado.
func NewScheduler(svc *Service, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		svc:      svc,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start bloquea hasta Stop; ejecutar en su propia goroutine.
func (s *Scheduler) Start() {
	defer close(s.done)
	s.log.Info().Dur("interval", s.interval).Msg("housekeeping programado iniciado")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stopChan:
			s.log.Info().Msg("housekeeping programado detenido")
			return
		}
	}
}

// Stop detiene el job y espera a que termine la ejecución en curso.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.done
}

func (s *Scheduler) runOnce(ctx context.Context) {
	progress := func(msg string) {
		s.log.Debug().Str("job", JobPurgeUnverified).Msg(msg)
	}
	if _, err := s.svc.PurgeUnverified(ctx, false, progress); err != nil {
		s.log.Error().Err(err).Msg("housekeeping programado falló")
	}
}
