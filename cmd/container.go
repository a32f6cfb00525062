// cmd/container.go
//
// Composition root. Owns infrastructure (Redis, Postgres, AWS clients) and
// wires the otp and lead modules. This is the only place that knows about
// every module.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/config"
	"github.com/Abraxas-365/leadgate/pkg/lead"
	"github.com/Abraxas-365/leadgate/pkg/lead/leadapi"
	"github.com/Abraxas-365/leadgate/pkg/lead/leadinfra"
	"github.com/Abraxas-365/leadgate/pkg/lead/leadsrv"
	"github.com/Abraxas-365/leadgate/pkg/logx"
	"github.com/Abraxas-365/leadgate/pkg/metricx"
	"github.com/Abraxas-365/leadgate/pkg/notifx"
	"github.com/Abraxas-365/leadgate/pkg/notifx/notifxbrevo"
	"github.com/Abraxas-365/leadgate/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/leadgate/pkg/notifx/notifxresend"
	"github.com/Abraxas-365/leadgate/pkg/notifx/notifxses"
	"github.com/Abraxas-365/leadgate/pkg/notifx/notifxsmtp"
	"github.com/Abraxas-365/leadgate/pkg/otp"
	"github.com/Abraxas-365/leadgate/pkg/otp/otpapi"
	"github.com/Abraxas-365/leadgate/pkg/otp/otpinfra"
	"github.com/Abraxas-365/leadgate/pkg/otp/otpsrv"
	"github.com/Abraxas-365/leadgate/pkg/otp/otptoken"
	"github.com/Abraxas-365/leadgate/pkg/ratelimit"
	"github.com/Abraxas-365/leadgate/pkg/ratelimit/ratelimitpg"
	"github.com/Abraxas-365/leadgate/pkg/ratelimit/ratelimitredis"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the composed modules.
type Container struct {
	Config *config.Config

	// Infrastructure, only opened when a component is configured against it
	DB      *sqlx.DB
	Redis   *redis.Client
	AWS     *aws.Config
	Metrics *metricx.Metrics

	// OTP
	RateLimitStore ratelimit.Store
	ReplayGuard    otp.RedemptionGuard
	Throttle       *ratelimit.IPThrottle
	Issuer         *otpsrv.Issuer
	Verifier       *otpsrv.Verifier
	OTPHandlers    *otpapi.Handlers

	// Lead
	Submitter    *leadsrv.Submitter
	LeadHandlers *leadapi.Handlers

	httpClient *http.Client
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{
		Config:     cfg,
		Metrics:    metricx.New(),
		httpClient: &http.Client{Timeout: cfg.Outbound.Timeout},
	}

	c.initInfrastructure()
	c.initOTP()
	c.initLead()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	if c.Config.NeedsDatabase() {
		db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		logx.Info("  ✅ Database connected")
	}

	if c.Config.NeedsRedis() {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v", err)
		}
		logx.Info("  ✅ Redis connected")
	}

	logx.Info("✅ Infrastructure initialized")
}

// awsConfig loads the shared AWS configuration on first use.
func (c *Container) awsConfig() aws.Config {
	if c.AWS == nil {
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.AWS = &cfg
	}
	return *c.AWS
}

// ---------------------------------------------------------------------------
// OTP module
// ---------------------------------------------------------------------------

func (c *Container) initOTP() {
	logx.Info("📦 Initializing OTP module...")
	cfg := c.Config

	c.RateLimitStore = c.newRateLimitStore()
	limiter := ratelimit.New(c.RateLimitStore, ratelimit.Policy{
		Window: cfg.RateLimit.Window,
		Max:    cfg.RateLimit.Max,
	})
	c.Throttle = ratelimit.NewIPThrottle(cfg.Throttle.RPS, cfg.Throttle.Burst)

	codec, err := otptoken.New(cfg.OTP.TokenFormat, cfg.OTP.Secret)
	if err != nil {
		logx.Fatalf("Failed to build token codec: %v", err)
	}

	client := notifx.NewClient(c.newEmailProvider(), notifx.Sender{
		Name:    cfg.Notifx.FromName,
		Address: cfg.Notifx.FromAddress,
	})
	mailer, err := otpinfra.NewNotifxMailer(client, cfg.Notifx.FromName, cfg.OTP.TTL)
	if err != nil {
		logx.Fatalf("Failed to build OTP mailer: %v", err)
	}

	c.Issuer = otpsrv.NewIssuer(limiter, codec, mailer, c.Metrics, otpsrv.IssuerConfig{
		TTL:             cfg.OTP.TTL,
		OutboundTimeout: cfg.Outbound.Timeout,
	})
	c.ReplayGuard = c.newReplayGuard()
	c.Verifier = otpsrv.NewVerifier(codec, c.ReplayGuard, c.Metrics)
	c.OTPHandlers = otpapi.NewHandlers(c.Issuer, c.Verifier)

	logx.Infof("  ✅ OTP module ready (token: %s, rate limit store: %s, mail: %s, single use: %t)",
		cfg.OTP.TokenFormat, cfg.RateLimit.Store, cfg.Notifx.Provider, cfg.OTP.SingleUse)
}

func (c *Container) newRateLimitStore() ratelimit.Store {
	switch c.Config.RateLimit.Store {
	case config.StoreRedis:
		return ratelimitredis.NewStore(c.Redis)
	case config.StorePostgres:
		store := ratelimitpg.NewStore(c.DB)
		if err := store.Migrate(context.Background()); err != nil {
			logx.Fatalf("Failed to migrate rate limit table: %v", err)
		}
		return store
	default:
		return ratelimit.NewMemoryStore()
	}
}

// newReplayGuard returns nil unless single-use tokens are enabled.
func (c *Container) newReplayGuard() otp.RedemptionGuard {
	if !c.Config.OTP.SingleUse {
		return nil
	}
	if c.Config.OTP.ReplayStore == config.StoreRedis {
		return otpinfra.NewRedisReplayGuard(c.Redis)
	}
	return otpinfra.NewMemoryReplayGuard()
}

func (c *Container) newEmailProvider() notifx.EmailSender {
	n := c.Config.Notifx
	switch n.Provider {
	case "ses":
		return notifxses.NewSESProvider(ses.NewFromConfig(c.awsConfig()))
	case "smtp":
		return notifxsmtp.NewSMTPProvider(n.SMTPHost, n.SMTPPort, n.SMTPUser, n.SMTPPass)
	case "resend":
		return notifxresend.NewResendProvider(n.ResendAPIKey)
	case "brevo":
		return notifxbrevo.NewBrevoProvider(n.BrevoAPIKey, n.BrevoBaseURL, c.httpClient)
	default:
		logx.Warn("  ⚠️ Using console email provider, codes are logged and not delivered")
		return notifxconsole.NewConsoleProvider()
	}
}

// ---------------------------------------------------------------------------
// Lead module
// ---------------------------------------------------------------------------

func (c *Container) initLead() {
	logx.Info("📦 Initializing lead module...")
	cfg := c.Config

	crm := leadinfra.NewHubSpotCRM(leadinfra.HubSpotConfig{
		PortalID:     cfg.CRM.PortalID,
		FormGUID:     cfg.CRM.FormGUID,
		AccessToken:  cfg.CRM.AccessToken,
		FormsBaseURL: cfg.CRM.FormsBaseURL,
		APIBaseURL:   cfg.CRM.APIBaseURL,
		PageURI:      cfg.CRM.PageURI,
		PageName:     cfg.CRM.PageName,
	}, c.httpClient)

	sinks := leadinfra.MultiSink{leadinfra.NewLogxAuditSink()}
	if cfg.Audit.WebhookURL != "" {
		sinks = append(sinks, leadinfra.NewWebhookSink(cfg.Audit.WebhookURL, c.httpClient))
		logx.Info("  ✅ Webhook audit sink enabled")
	}
	if cfg.Audit.S3Bucket != "" {
		sinks = append(sinks, leadinfra.NewS3AuditSink(s3.NewFromConfig(c.awsConfig()), cfg.Audit.S3Bucket, cfg.Audit.S3Prefix))
		logx.Infof("  ✅ S3 audit sink enabled (bucket: %s)", cfg.Audit.S3Bucket)
	}

	var audit lead.AuditSink = sinks
	c.Submitter = leadsrv.NewSubmitter(crm, audit, c.Metrics, cfg.Outbound.Timeout)
	c.LeadHandlers = leadapi.NewHandlers(c.Submitter)

	logx.Info("  ✅ Lead module ready")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// StartBackgroundServices prunes expired rate-limit windows and redeemed
// challenges until ctx ends.
func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.pruneExpired(ctx, now)
			}
		}
	}()
}

func (c *Container) pruneExpired(ctx context.Context, now time.Time) {
	if guard, ok := c.ReplayGuard.(*otpinfra.MemoryReplayGuard); ok {
		if n := guard.Sweep(now); n > 0 {
			logx.Debugf("pruned %d redeemed challenges", n)
		}
	}

	switch store := c.RateLimitStore.(type) {
	case *ratelimit.MemoryStore:
		if n := store.Sweep(now); n > 0 {
			logx.Debugf("pruned %d rate limit windows", n)
		}
	case *ratelimitpg.Store:
		n, err := store.Purge(ctx, now)
		if err != nil {
			logx.WithError(err).Warn("rate limit purge failed")
			return
		}
		if n > 0 {
			logx.Debugf("pruned %d rate limit rows", n)
		}
	}
}

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
