package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

// Worker envuelve el servidor asynq y el scheduler opcional.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    zerolog.Logger
}

// WorkerConfig dependencias del worker.
type WorkerConfig struct {
	Redis       asynq.RedisClientOpt
	Logger      zerolog.Logger
	Concurrency int
	Reconciler  Reconciler
	// ReconcileCron vacío desactiva la reconciliación programada.
	ReconcileCron string
}

// NewMux registra los handlers de tareas.
func NewMux(r Reconciler, logger zerolog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeReconcile, NewReconcileHandler(r, logger))
	return mux
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Reconciler == nil {
		return nil, errors.New("worker: reconciler requerido")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	log := cfg.Logger
	srv := asynq.NewServer(cfg.Redis, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, t *asynq.Task, err error) {
			log.Error().Err(err).Str("task", t.Type()).Msg("tarea fallida")
		}),
	})

	var scheduler *asynq.Scheduler
	if cfg.ReconcileCron != "" {
		task, err := NewReconcileTask("")
		if err != nil {
			return nil, err
		}
		scheduler = asynq.NewScheduler(cfg.Redis, &asynq.SchedulerOpts{Location: time.UTC})
		if _, err := scheduler.Register(cfg.ReconcileCron, task); err != nil {
			return nil, err
		}
	}

	return &Worker{server: srv, mux: NewMux(cfg.Reconciler, log), scheduler: scheduler, logger: log}, nil
}

// Run procesa tareas hasta que ctx se cancela.
func (w *Worker) Run(ctx context.Context) error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
		defer w.scheduler.Shutdown()
	}
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info().Msg("worker iniciado")
	<-ctx.Done()
	w.server.Shutdown()
	w.logger.Info().Msg("worker detenido")
	return nil
}

// Client encola tareas.
type Client struct {
	client *asynq.Client
}

func NewClient(redis asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redis)}
}

// EnqueueReconcile encola la reconciliación de una empresa.
func (c *Client) EnqueueReconcile(ctx context.Context, companyID string) (string, error) {
	task, err := NewReconcileTask(companyID)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (c *Client) Close() error { return c.client.Close() }

// RedisOpt traduce la configuración de Redis al formato de asynq.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}
