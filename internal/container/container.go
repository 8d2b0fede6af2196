package container

import (
	"github.com/acecasino/payout_automation/internal/application/services"
	"github.com/acecasino/payout_automation/internal/config"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"github.com/acecasino/payout_automation/internal/infrastructure/database/repositories"
	"github.com/acecasino/payout_automation/internal/infrastructure/external/treasury"
	"github.com/acecasino/payout_automation/internal/notification"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger

	// Repositories
	PayoutRequestRepo     domainRepos.PayoutRequestRepository
	MerchantRepo          domainRepos.MerchantRepository
	RiskScoreRepo         domainRepos.RiskScoreRepository
	MerchantPayoutRepo    domainRepos.MerchantPayoutRequestRepository
	LedgerRepo            domainRepos.LedgerRepository
	AdminNotificationRepo domainRepos.AdminNotificationRepository
	AuditLogRepo          domainRepos.AuditLogRepository

	// External collaborators
	TreasuryClient *treasury.Client
	Notifier       notification.Sender

	// Services
	AuditSvc       *services.AuditService
	RiskScoringSvc *services.RiskScoringService
	QueueManager   *services.QueueManager
	AdmissionSvc   *services.PayoutAdmissionService
	BatchProcessor *services.BatchProcessor
	MetricsSvc     *services.MetricsService
	Scheduler      *services.PayoutScheduler
}

// NewContainer creates a new container with all dependencies
func NewContainer() (*Container, error) {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database
	db, err := config.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	payoutRequestRepo := repositories.NewPayoutRequestRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	riskScoreRepo := repositories.NewRiskScoreRepository(db)
	merchantPayoutRepo := repositories.NewMerchantPayoutRequestRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	adminNotificationRepo := repositories.NewAdminNotificationRepository(db)
	auditLogRepo := repositories.NewAuditLogRepository(db)

	// External collaborators
	treasuryClient := treasury.NewClient(treasury.ClientConfig{
		BaseURL: cfg.Treasury.BaseURL,
		APIKey:  cfg.Treasury.APIKey,
		Timeout: cfg.Treasury.Timeout,
	}, zapLogger)

	var notifier notification.Sender
	if cfg.Notification.Telegram.BotToken != "" {
		notifier = notification.NewTelegramNotifier(notification.TelegramConfig{
			BotToken: cfg.Notification.Telegram.BotToken,
			ChatID:   cfg.Notification.Telegram.ChatID,
		}, zapLogger)
	} else {
		notifier = notification.NoopSender{}
	}

	// Services
	auditSvc := services.NewAuditService(auditLogRepo, zapLogger)
	riskScoringSvc := services.NewRiskScoringService(merchantRepo, riskScoreRepo, auditSvc, zapLogger)
	queueManager := services.NewQueueManager(zapLogger)
	admissionSvc := services.NewPayoutAdmissionService(payoutRequestRepo, riskScoringSvc, queueManager, zapLogger)

	processorConfig := services.BatchProcessorConfig{
		OptimalBatchSize:   cfg.Automation.OptimalBatchSize,
		MaxBatchSize:       cfg.Automation.MaxBatchSize,
		MaxProcessingTime:  cfg.Automation.MaxProcessingTime,
		AutomationIdentity: cfg.Automation.AutomationIdentity,
	}
	batchProcessor := services.NewBatchProcessor(
		payoutRequestRepo,
		merchantPayoutRepo,
		ledgerRepo,
		adminNotificationRepo,
		treasuryClient,
		auditSvc,
		notifier,
		zapLogger,
		processorConfig,
	)

	costPerManual, err := decimal.NewFromString(cfg.Automation.CostPerManualPayout)
	if err != nil {
		costPerManual = decimal.NewFromInt(15)
	}
	metricsSvc := services.NewMetricsService(payoutRequestRepo, zapLogger, services.MetricsConfig{
		CostPerManualPayout: costPerManual,
	})

	scheduler := services.NewPayoutScheduler(
		queueManager,
		batchProcessor,
		auditSvc,
		adminNotificationRepo,
		notifier,
		zapLogger,
		services.SchedulerConfig{
			TickInterval: cfg.Automation.TickInterval,
			TickTimeout:  cfg.Automation.TickTimeout,
		},
		processorConfig,
	)

	return &Container{
		Config: cfg,
		DB:     db,
		Logger: zapLogger,

		PayoutRequestRepo:     payoutRequestRepo,
		MerchantRepo:          merchantRepo,
		RiskScoreRepo:         riskScoreRepo,
		MerchantPayoutRepo:    merchantPayoutRepo,
		LedgerRepo:            ledgerRepo,
		AdminNotificationRepo: adminNotificationRepo,
		AuditLogRepo:          auditLogRepo,

		TreasuryClient: treasuryClient,
		Notifier:       notifier,

		AuditSvc:       auditSvc,
		RiskScoringSvc: riskScoringSvc,
		QueueManager:   queueManager,
		AdmissionSvc:   admissionSvc,
		BatchProcessor: batchProcessor,
		MetricsSvc:     metricsSvc,
		Scheduler:      scheduler,
	}, nil
}
