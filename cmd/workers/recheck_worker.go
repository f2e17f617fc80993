package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"domainmarket/marketplace-backend/internal/config"
	"domainmarket/marketplace-backend/internal/listings"
	"domainmarket/marketplace-backend/internal/notifications"
	"domainmarket/marketplace-backend/internal/verification"
	"domainmarket/marketplace-backend/pkg/dnscheck"
	"domainmarket/marketplace-backend/pkg/email"
	"domainmarket/marketplace-backend/pkg/errs"
)

// RecheckWorker periodically re-runs the advisory ownership checker against
// pending dns/file/html verification requests and records each outcome in the
// history. It never flips a request or listing status: admin approval stays
// the only path to verified. It also retries dead-lettered emails once they
// are older than the configured age.
type RecheckWorker struct {
	verifications verification.Repository
	listings      listings.Repository
	store         notifications.Store
	checker       *verification.Checker
	sender        email.Sender
	logger        *zap.Logger
	config        RecheckWorkerConfig
}

// RecheckWorkerConfig configures one worker run.
type RecheckWorkerConfig struct {
	BatchSize        int
	JobTimeout       time.Duration
	DeadLetterMaxAge time.Duration
}

// DefaultRecheckWorkerConfig returns default configuration.
func DefaultRecheckWorkerConfig() RecheckWorkerConfig {
	return RecheckWorkerConfig{
		BatchSize:        50,
		JobTimeout:       5 * time.Minute,
		DeadLetterMaxAge: time.Hour,
	}
}

// NewRecheckWorker creates a worker.
func NewRecheckWorker(db *gorm.DB, checker *verification.Checker, sender email.Sender, logger *zap.Logger, cfg RecheckWorkerConfig) *RecheckWorker {
	return &RecheckWorker{
		verifications: verification.NewRepository(db),
		listings:      listings.NewRepository(db),
		store:         notifications.NewStore(db),
		checker:       checker,
		sender:        sender,
		logger:        logger,
		config:        cfg,
	}
}

// recheckPending loads a batch of pending externally-checkable requests and
// runs the checker against each. Email-method requests are skipped: they
// resolve through the confirmation link, not polling.
func (w *RecheckWorker) recheckPending(ctx context.Context) {
	methods := []verification.Method{
		verification.MethodDNS,
		verification.MethodFile,
		verification.MethodHTML,
	}
	pending, err := w.verifications.ListPending(ctx, methods, w.config.BatchSize)
	if err != nil {
		w.logger.Error("Failed to load pending verifications", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	w.logger.Info("Re-checking pending verifications", zap.Int("count", len(pending)))

	for i := range pending {
		req := &pending[i]
		w.recheckOne(ctx, req)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (w *RecheckWorker) recheckOne(ctx context.Context, req *verification.Request) {
	payload, err := verification.DecodePayload(req.Method, req.Data)
	if err != nil {
		w.logger.Error("Invalid verification payload",
			zap.String("verification_id", req.ID.String()),
			zap.Error(err))
		return
	}

	listing, err := w.listings.GetByID(ctx, req.DomainID)
	if err != nil {
		w.logger.Warn("Listing lookup failed for pending verification",
			zap.String("verification_id", req.ID.String()),
			zap.Error(err))
		return
	}

	result := w.checker.Check(ctx, req.Method, listing.DomainName, payload)

	record := &verification.History{
		VerificationID: req.ID,
		DomainID:       req.DomainID,
		Action:         verification.ActionCheckPerformed,
		Detail:         checkDetail(result),
	}
	if err := w.verifications.AppendHistory(ctx, record); err != nil {
		w.logger.Error("Failed to record check outcome",
			zap.String("verification_id", req.ID.String()),
			zap.Error(err))
		return
	}

	w.logger.Info("Verification re-checked",
		zap.String("verification_id", req.ID.String()),
		zap.String("method", string(req.Method)),
		zap.Bool("verified", result.Verified))
}

func checkDetail(result verification.CheckResult) datatypes.JSON {
	raw, _ := json.Marshal(map[string]any{
		"verified": result.Verified,
		"message":  result.Message,
		"source":   "recheck_worker",
	})
	return datatypes.JSON(raw)
}

// retryDeadLetters re-sends dead-lettered emails older than the configured
// age. A transient provider failure leaves the letter unmarked so the next
// run picks it up again; any other failure marks it retried and leaves the
// row for operators.
func (w *RecheckWorker) retryDeadLetters(ctx context.Context) {
	if w.sender == nil {
		return
	}

	cutoff := time.Now().Add(-w.config.DeadLetterMaxAge)
	letters, err := w.store.ListUnretriedDeadLetters(ctx, cutoff, w.config.BatchSize)
	if err != nil {
		w.logger.Error("Failed to load dead letters", zap.Error(err))
		return
	}
	if len(letters) == 0 {
		return
	}

	w.logger.Info("Retrying dead-lettered emails", zap.Int("count", len(letters)))

	for _, letter := range letters {
		msg := email.Message{
			To:      []string{letter.Recipient},
			Subject: letter.Subject,
			HTML:    letter.BodyHTML,
		}
		deliveryID, sendErr := w.sender.Send(ctx, msg)
		if sendErr != nil {
			w.logger.Warn("Dead letter retry failed",
				zap.String("dead_letter_id", letter.ID.String()),
				zap.String("event_type", letter.EventType),
				zap.Error(sendErr))
			if errs.IsRetryable(sendErr) {
				// Provider still down; leave it for the next run.
				continue
			}
		} else {
			w.logger.Info("Dead letter delivered",
				zap.String("dead_letter_id", letter.ID.String()),
				zap.String("delivery_id", deliveryID))
		}

		if err := w.store.MarkDeadLetterRetried(ctx, letter.ID); err != nil {
			w.logger.Error("Failed to mark dead letter retried",
				zap.String("dead_letter_id", letter.ID.String()),
				zap.Error(err))
		}
	}
}

func (w *RecheckWorker) runJob(ctx context.Context, name string, job func(context.Context)) func() {
	return func() {
		jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
		defer cancel()

		start := time.Now()
		job(jobCtx)
		w.logger.Debug("Worker job finished",
			zap.String("job", name),
			zap.Duration("duration", time.Since(start)))
	}
}

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Connected to database")

	var sender email.Sender
	if cfg.Email.FromAddress != "" {
		sesSender, err := email.NewSESSender(context.Background(), cfg.Email.Region, cfg.Email.FromAddress)
		if err != nil {
			logger.Fatal("Failed to create email sender", zap.Error(err))
		}
		sender = sesSender
	}

	dnsClient := dnscheck.NewClient(cfg.Verification.Resolvers, cfg.Verification.CheckTimeout)
	checker := verification.NewChecker(dnsClient, cfg.Verification.CheckTimeout)

	workerCfg := DefaultRecheckWorkerConfig()
	if cfg.Worker.DeadLetterMaxAge > 0 {
		workerCfg.DeadLetterMaxAge = cfg.Worker.DeadLetterMaxAge
	}
	worker := NewRecheckWorker(db, checker, sender, logger, workerCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	schedule := cfg.Worker.RecheckSchedule
	if schedule == "" {
		schedule = "@every 5m"
	}
	if _, err := scheduler.AddFunc(schedule, worker.runJob(ctx, "recheck_pending", worker.recheckPending)); err != nil {
		logger.Fatal("Failed to schedule recheck job", zap.Error(err))
	}
	if _, err := scheduler.AddFunc(schedule, worker.runJob(ctx, "retry_dead_letters", worker.retryDeadLetters)); err != nil {
		logger.Fatal("Failed to schedule dead letter job", zap.Error(err))
	}

	logger.Info("Recheck worker starting", zap.String("schedule", schedule))
	scheduler.Start()

	// Run both jobs once on startup so a restart does not wait a full
	// schedule interval.
	worker.runJob(ctx, "recheck_pending", worker.recheckPending)()
	worker.runJob(ctx, "retry_dead_letters", worker.retryDeadLetters)()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received")
	cancel()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("Recheck worker stopped")
}
