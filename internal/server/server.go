package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sponsorloop/sponsorloop/internal/auth"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/internal/availability"
	availabilitydomain "github.com/sponsorloop/sponsorloop/internal/availability/domain"
	"github.com/sponsorloop/sponsorloop/internal/booking"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/notify"
	obslogger "github.com/sponsorloop/sponsorloop/internal/observability/logger"
	obsmetrics "github.com/sponsorloop/sponsorloop/internal/observability/metrics"
	"github.com/sponsorloop/sponsorloop/internal/payment"
	paymentdomain "github.com/sponsorloop/sponsorloop/internal/payment/domain"
	"github.com/sponsorloop/sponsorloop/internal/payout"
	payoutdomain "github.com/sponsorloop/sponsorloop/internal/payout/domain"
	"github.com/sponsorloop/sponsorloop/internal/providers"
	"github.com/sponsorloop/sponsorloop/internal/ratelimit"
	"github.com/sponsorloop/sponsorloop/internal/sponsor"
	sponsordomain "github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	"github.com/sponsorloop/sponsorloop/internal/writer"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	providers.Module,
	notify.Module,
	auth.Module,
	writer.Module,
	sponsor.Module,
	availability.Module,
	booking.Module,
	payment.Module,
	payout.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Log:             log.Named("http"),
		Debug:           cfg.Environment != "production",
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(obsmetrics.HTTP()))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger) *gin.Engine {
	return NewEngine(cfg, log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	authsvc         authdomain.Service
	writerSvc       writerdomain.Service
	sponsorSvc      sponsordomain.Service
	availabilitySvc availabilitydomain.Service
	bookingSvc      bookingdomain.Service
	paymentSvc      paymentdomain.Service
	payoutSvc       payoutdomain.Service
	limiter         *ratelimit.RequestLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Authsvc         authdomain.Service
	WriterSvc       writerdomain.Service
	SponsorSvc      sponsordomain.Service
	AvailabilitySvc availabilitydomain.Service
	BookingSvc      bookingdomain.Service
	PaymentSvc      paymentdomain.Service
	PayoutSvc       payoutdomain.Service
	Limiter         *ratelimit.RequestLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("server"),
		genID:           p.GenID,
		authsvc:         p.Authsvc,
		writerSvc:       p.WriterSvc,
		sponsorSvc:      p.SponsorSvc,
		availabilitySvc: p.AvailabilitySvc,
		bookingSvc:      p.BookingSvc,
		paymentSvc:      p.PaymentSvc,
		payoutSvc:       p.PayoutSvc,
		limiter:         p.Limiter,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Auth --------
	api.POST("/auth/signup", s.AuthRateLimit(), s.Signup)
	api.POST("/auth/login", s.AuthRateLimit(), s.Login)
	api.POST("/auth/logout", s.AuthRequired(), s.Logout)
	api.GET("/auth/me", s.AuthRequired(), s.Me)

	// -------- Writers --------
	api.GET("/writers", s.ListWriters)
	api.POST("/writers", s.AuthRequired(), s.CreateWriter)
	api.GET("/writers/me", s.AuthRequired(), s.GetMyWriter)
	api.GET("/writers/:id", s.GetWriterByID)
	api.PATCH("/writers/:id", s.AuthRequired(), s.UpdateWriter)
	api.GET("/writers/:id/stats", s.AuthRequired(), s.GetWriterStats)

	// Availability is public so sponsors can browse before signing up.
	api.GET("/writers/:id/availability", s.GetWriterAvailability)
	api.GET("/writers/:id/slots/:date", s.GetSlotAvailability)
	api.GET("/availability/:slug", s.GetAvailabilityBySlug)

	api.GET("/writers/:id/blackout-dates", s.ListBlackoutDates)
	api.POST("/writers/:id/blackout-dates", s.AuthRequired(), s.AddBlackoutDate)
	api.DELETE("/writers/:id/blackout-dates/:date", s.AuthRequired(), s.RemoveBlackoutDate)

	// -------- Sponsors --------
	api.POST("/sponsors", s.AuthRequired(), s.CreateSponsor)
	api.GET("/sponsors/me", s.AuthRequired(), s.GetMySponsor)
	api.PATCH("/sponsors/me", s.AuthRequired(), s.UpdateMySponsor)

	// -------- Bookings --------
	api.POST("/bookings", s.AuthRequired(), s.BookingRateLimit(), s.CreateBooking)
	api.GET("/bookings/writer", s.AuthRequired(), s.ListWriterBookings)
	api.GET("/bookings/sponsor", s.AuthRequired(), s.ListSponsorBookings)
	api.GET("/bookings/upcoming", s.AuthRequired(), s.ListUpcomingBookings)
	api.GET("/bookings/:id", s.AuthRequired(), s.GetBookingByID)
	api.PATCH("/bookings/:id", s.AuthRequired(), s.UpdateBookingAdContent)
	api.PATCH("/bookings/:id/approve", s.AuthRequired(), s.ApproveBooking)
	api.PATCH("/bookings/:id/reject", s.AuthRequired(), s.RejectBooking)
	api.PATCH("/bookings/:id/publish", s.AuthRequired(), s.PublishBooking)
	api.PATCH("/bookings/:id/cancel", s.AuthRequired(), s.CancelBooking)

	// -------- Payouts --------
	api.GET("/payouts", s.AuthRequired(), s.ListPayouts)
	api.GET("/payouts/summary", s.AuthRequired(), s.GetPayoutSummary)
	api.GET("/payouts/eligible", s.AuthRequired(), s.ListEligibleBookings)
	api.POST("/payouts/request", s.AuthRequired(), s.RequestPayout)
	api.GET("/payouts/:id", s.AuthRequired(), s.GetPayoutByID)
	api.PATCH("/payouts/:id/status", s.AuthRequired(), s.RequireRole(authdomain.RoleAdmin), s.UpdatePayoutStatus)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/lemonsqueezy", s.HandlePaymentWebhook)
}
