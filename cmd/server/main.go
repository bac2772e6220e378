package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/maileazy/mailhub/modules/auth"
	modbilling "github.com/maileazy/mailhub/modules/billing"
	"github.com/maileazy/mailhub/modules/campaign"
	"github.com/maileazy/mailhub/modules/mailformat"
	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/billing"
	"github.com/maileazy/mailhub/pkg/catalog"
	"github.com/maileazy/mailhub/pkg/config"
	"github.com/maileazy/mailhub/pkg/email"
	"github.com/maileazy/mailhub/pkg/entitlement"
	"github.com/maileazy/mailhub/pkg/httpserver"
	"github.com/maileazy/mailhub/pkg/ledger"
	"github.com/maileazy/mailhub/pkg/logger"
	"github.com/maileazy/mailhub/pkg/mailer"
	mongodb "github.com/maileazy/mailhub/pkg/mongo"
	"github.com/maileazy/mailhub/pkg/rewrite"
)

type appConfig struct {
	Environment   string `env:"APP_ENV" envDefault:"development"`
	ServiceName   string `env:"APP_NAME" envDefault:"mailhub"`
	MailTransport string `env:"MAIL_TRANSPORT" envDefault:"gmail"` // gmail or dev
	DevMailDir    string `env:"DEV_MAIL_DIR" envDefault:"./devmail"`
	EmailEnabled  bool   `env:"TRANSACTIONAL_EMAIL_ENABLED" envDefault:"true"`
	AIEnabled     bool   `env:"AI_REWRITE_ENABLED" envDefault:"true"`
}

func main() {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	if err := run(context.Background(), appCfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var mongoCfg mongodb.Config
	config.MustLoad(&mongoCfg)

	db, err := mongodb.NewWithDatabase(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	if err := account.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	if err := campaign.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	accounts := account.NewMongoStore(db)
	plans := catalog.NewMongoCatalog(db)
	payments := billing.NewMongoPaymentStore(db)
	events := billing.NewMongoEventStore(db)
	recipients := campaign.NewMongoRecipientStore(db)
	formats := mailformat.NewMongoStore(db)

	var stripeCfg billing.StripeConfig
	config.MustLoad(&stripeCfg)
	provider, err := billing.NewStripeProvider(stripeCfg)
	if err != nil {
		return err
	}

	sender, err := newMailSender(appCfg, db, log)
	if err != nil {
		return err
	}

	var emails email.EmailSender
	if appCfg.EmailEnabled {
		var emailCfg email.Config
		config.MustLoad(&emailCfg)
		emails, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			return err
		}
	}

	var rewriter rewrite.Rewriter
	if appCfg.AIEnabled {
		var rewriteCfg rewrite.Config
		config.MustLoad(&rewriteCfg)
		rewriter, err = rewrite.NewTextCortexClient(rewriteCfg)
		if err != nil {
			return err
		}
	}

	checker := entitlement.NewChecker(accounts, plans)
	credits := ledger.New(accounts, plans)
	reconciler := billing.NewReconciler(accounts, plans, payments, events, provider,
		log.With(logger.Component("reconciler")))

	authSvc := auth.NewService(accounts, emails, log.With(logger.Component("auth")))
	campaignSvc := campaign.NewService(checker, credits, sender, rewriter, recipients,
		log.With(logger.Component("campaign")))
	billingSvc := modbilling.NewService(reconciler, provider, plans,
		log.With(logger.Component("billing")))
	formatSvc := mailformat.NewService(formats, log.With(logger.Component("mailformat")))

	healthcheck := mongodb.Healthcheck(db.Client())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Mount("/api", authSvc.Handle())
	r.Mount("/email", campaignSvc.Handle())
	r.Mount("/rewrite", campaignSvc.RewriteHandler())
	r.Mount("/payments", billingSvc.Handle())
	r.Mount("/home", billingSvc.PlansHandler())
	r.Mount("/mailformats", formatSvc.Handle())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := healthcheck(req.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	return httpserver.New(httpCfg, log).Run(ctx, r)
}

// newMailSender picks the campaign mail transport. The dev transport
// writes messages to disk instead of delivering them.
func newMailSender(appCfg appConfig, db *mongo.Database, log *slog.Logger) (mailer.Sender, error) {
	if appCfg.MailTransport == "dev" {
		log.Warn("using dev mail transport, messages are written to disk",
			slog.String("dir", appCfg.DevMailDir))
		return mailer.NewDevSender(appCfg.DevMailDir), nil
	}

	var gmailCfg mailer.Config
	config.MustLoad(&gmailCfg)
	return mailer.NewGmailSender(gmailCfg, mailer.NewMongoTokenStore(db))
}
