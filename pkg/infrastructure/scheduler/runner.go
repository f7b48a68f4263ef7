package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Parser accepts the standard five-field specs, an optional leading seconds
// field and descriptors such as "@every 15m".
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Runner runs jobs on cron specs. A job still running when its next tick
// fires is skipped for that tick.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	cl := cronLogger{log: logger.Sugar()}
	return &Runner{
		cron: cron.New(
			cron.WithParser(Parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add registers job under spec
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		if r.baseCtx.Err() != nil {
			return
		}
		job(r.baseCtx)
	})
}

func (r *Runner) Start() {
	r.logger.Info("scheduler started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

// Stop waits for running jobs to finish
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("scheduler stopped")
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
