package di

import (
	"github.com/sirupsen/logrus"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/config"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/handler"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/service"
)

// App holds the wired report service and its adapters.
type App struct {
	Reports service.ReportService
	Handler *handler.ReportHandler
	// Digest is nil when no schedule or broker is configured.
	Digest    *service.DigestJob
	publisher *KafkaDigestPublisher
}

// NewApp builds the record store, the report service and the transports
// around it from cfg.
func NewApp(cfg config.Config, logger *logrus.Logger) (*App, error) {
	repo, err := newRepository(cfg)
	if err != nil {
		return nil, err
	}
	reports := service.NewReportService(repo, period.NewResolver(cfg.Location()), logger)

	app := &App{
		Reports: reports,
		Handler: handler.NewReportHandler(reports),
	}
	if cfg.DigestEnabled() {
		app.publisher = NewKafkaDigestPublisher(cfg.KafkaBroker, cfg.ReportTopic, logger)
		app.Digest = service.NewDigestJob(reports, app.publisher, logger)
	}
	return app, nil
}

func (a *App) Close() error {
	if a.publisher != nil {
		return a.publisher.Close()
	}
	return nil
}

func newRepository(cfg config.Config) (repository.ReportRepository, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return repository.NewMemoryRepository(repository.Dataset{}), nil
	}
	db, err := config.InitDatabase(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return repository.NewReportRepository(db), nil
}
