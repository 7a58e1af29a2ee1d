// Package httpapi serves the read-only JSON views over HTTP with fiber.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thiagorusso-10/contagemdeculto/internal/ctxutil"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
)

// UserHeader carries the acting user's id on API requests.
const UserHeader = "X-User-ID"

const requestTimeout = 5 * time.Second

// Server exposes InsightService over HTTP.
type Server struct {
	app     *fiber.App
	insight primary.InsightService
	ledger  primary.LedgerService
	logger  *slog.Logger
}

// NewServer builds the fiber app and registers every route.
func NewServer(insight primary.InsightService, ledger primary.LedgerService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		insight: insight,
		ledger:  ledger,
		logger:  logger.With(slog.String("component", "httpapi")),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + UserHeader,
	}))
	s.app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	s.app.Use(etag.New())
	s.app.Use(s.requestContext)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")
	api.Get("/dashboard", s.getDashboard)
	api.Get("/history", s.getHistory)
	api.Get("/analytics", s.getAnalytics)
	api.Get("/reports", s.getReports)
	api.Get("/capabilities", s.getCapabilities)
	api.Get("/catalog", s.getCatalog)
}

// App returns the underlying fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestContext tags each request with an id, a timeout and the acting
// user, and logs its outcome.
func (s *Server) requestContext(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("X-Request-ID", id)

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()
	if user := c.Get(UserHeader); user != "" {
		ctx = ctxutil.WithUserID(ctx, user)
	}
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		slog.String("id", id),
		slog.String("method", c.Method()),
		slog.String("path", c.OriginalURL()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.Path()), slog.String("error", err.Error()))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) getDashboard(c *fiber.Ctx) error {
	return c.JSON(s.insight.Dashboard(c.UserContext()))
}

// getHistory returns the year/month/day tree, or ISO weeks with ?by=week.
func (s *Server) getHistory(c *fiber.Ctx) error {
	switch c.Query("by", "month") {
	case "month":
		return c.JSON(s.insight.History(c.UserContext()))
	case "week":
		return c.JSON(s.insight.Weeks(c.UserContext()))
	default:
		return fiber.NewError(fiber.StatusBadRequest, "by must be month or week")
	}
}

// getAnalytics accepts ?site=ID&select=N&today=YYYY-MM-DD.
func (s *Server) getAnalytics(c *fiber.Ctx) error {
	req := primary.AnalyticsRequest{SiteID: c.Query("site")}

	if raw := c.Query("select"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "select must be an integer")
		}
		req.Selected = &n
	}
	if raw := c.Query("today"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "today must be YYYY-MM-DD")
		}
		req.Today = t
	}
	if err := s.checkView(c, req.SiteID); err != nil {
		return err
	}
	return c.JSON(s.insight.Analytics(c.UserContext(), req))
}

func (s *Server) getReports(c *fiber.Ctx) error {
	siteID := c.Query("site")
	if err := s.checkView(c, siteID); err != nil {
		return err
	}
	return c.JSON(s.insight.Reports(c.UserContext(), siteID))
}

func (s *Server) getCapabilities(c *fiber.Ctx) error {
	caps, err := s.insight.Capabilities(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{
		"role":           caps.Role,
		"siteId":         caps.SiteID,
		"canCreate":      caps.CanCreate(),
		"canViewAll":     caps.CanViewAll(),
		"canEditSite":    caps.SiteID != "" && caps.CanEdit(caps.SiteID),
		"canManageItems": caps.CanManageCatalog(),
	})
}

// getCatalog returns sites, presenters and volunteer areas for pickers.
func (s *Server) getCatalog(c *fiber.Ctx) error {
	snap := s.ledger.Snapshot()
	return c.JSON(fiber.Map{
		"sites":          snap.Sites,
		"presenters":     snap.Presenters,
		"volunteerAreas": snap.VolunteerAreas,
	})
}

// checkView restricts site-scoped reads when the request names a user.
// Anonymous requests are served in full.
func (s *Server) checkView(c *fiber.Ctx, siteID string) error {
	if ctxutil.UserFromContext(c.UserContext()) == "" {
		return nil
	}
	caps, err := s.insight.Capabilities(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	if siteID == "" {
		if !caps.CanViewAll() {
			return fiber.NewError(fiber.StatusForbidden, "a site must be selected for this role")
		}
		return nil
	}
	if !caps.CanView(siteID) {
		return fiber.NewError(fiber.StatusForbidden, "site not visible for this role")
	}
	return nil
}
