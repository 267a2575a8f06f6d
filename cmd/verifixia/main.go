// cmd/verifixia/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shravani-Dhumal/Verifixia/internal/api"
	"github.com/Shravani-Dhumal/Verifixia/internal/auth"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/config"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/logger"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/observability"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
	"github.com/Shravani-Dhumal/Verifixia/internal/session"
)

const usage = `usage: verifixia <command> [flags]

commands:
  register    create an account and sign in
  login       sign in with email and password
  logout      clear the local session
  whoami      show the current user
  upload      submit a media file for analysis
  model-info  show current model metadata
  health      probe backend liveness
  logs        list | delete | clear forensic logs
  watch       live-monitor loop with a /metrics endpoint
`

type app struct {
	cfg     *config.Config
	log     logger.Logger
	store   session.Store
	gateway *auth.Gateway
	client  *api.Client
	obs     *observability.Observability
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	store, err := newStore(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	client := api.NewClient(cfg.Backend, store, obs, log)
	gateway := auth.NewGateway(auth.NewIdentityClient(cfg.Identity), store, client, log)

	a := &app{cfg: cfg, log: log, store: store, gateway: gateway, client: client, obs: obs}

	if err := a.run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newStore(cfg *config.Config, log logger.Logger) (session.Store, error) {
	if cfg.Session.Backend == "redis" {
		return session.NewRedisStore(cfg.Session.Redis, log)
	}
	return session.NewFileStore(cfg.Session.File, log)
}

func (a *app) run(command string, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.gateway.Logout(); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil
	case "whoami":
		return a.whoami()
	case "upload":
		return a.upload(ctx, args)
	case "model-info":
		return printJSON(a.client.FetchModelInfo(ctx))
	case "health":
		health, err := a.client.FetchHealth(ctx)
		if err != nil {
			return err
		}
		return printJSON(health)
	case "logs":
		return a.logs(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	displayName := fs.String("name", "", "display name (optional)")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("register: --email and --password are required")
	}

	user, err := a.gateway.RegisterWithEmail(ctx, auth.Credentials{
		Email:       *email,
		Password:    *password,
		DisplayName: *displayName,
	})
	if err != nil {
		return err
	}
	return printJSON(user)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("login: --email and --password are required")
	}

	user, err := a.gateway.LoginWithEmail(ctx, auth.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	return printJSON(user)
}

func (a *app) whoami() error {
	user := a.gateway.CurrentUser()
	if user == nil {
		fmt.Println("not signed in")
		return nil
	}
	return printJSON(user)
}

func (a *app) upload(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("upload: a file path is required")
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.client.UploadImage(ctx, f, filepath.Base(path))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) logs(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("logs: expected list, delete, or clear")
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("logs list", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		pageSize := fs.Int("page-size", 20, "page size")
		start := fs.String("start", "", "start date (ISO timestamp)")
		end := fs.String("end", "", "end date (ISO timestamp)")
		source := fs.String("source", "", "source type filter")
		fs.Parse(args[1:])

		logs, err := a.client.FetchDetectionLogs(ctx, models.LogQuery{
			Page:       *page,
			PageSize:   *pageSize,
			StartDate:  *start,
			EndDate:    *end,
			SourceType: *source,
		})
		if err != nil {
			return err
		}
		return printJSON(logs)

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("logs delete: a log id is required")
		}
		body, err := a.client.DeleteDetectionLog(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(body)

	case "clear":
		fs := flag.NewFlagSet("logs clear", flag.ExitOnError)
		source := fs.String("source", "", "source type filter")
		fs.Parse(args[1:])

		body, err := a.client.ClearDetectionLogs(ctx, *source)
		if err != nil {
			return err
		}
		return printJSON(body)

	default:
		return fmt.Errorf("logs: unknown subcommand %q", args[0])
	}
}

// watch runs the live-monitoring loop: poll recent logs, emit heartbeat
// telemetry under one monitoring session id, and serve Prometheus metrics
// until interrupted.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	interval := fs.Duration("interval", 30*time.Second, "poll interval")
	source := fs.String("source", "live", "source reported in telemetry")
	fs.Parse(args)

	monitorID := uuid.NewString()
	a.log.Info("starting live monitor", map[string]interface{}{
		"sessionId": monitorID,
		"interval":  interval.String(),
	})

	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		metricsSrv = &http.Server{Addr: a.cfg.Metrics.Address, Handler: promhttp.Handler()}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.log.Error("metrics server failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	unsubscribe := a.store.Subscribe(func(u *models.User) {
		if u == nil {
			a.log.Info("auth state changed: signed out", nil)
			return
		}
		a.log.Info("auth state changed", map[string]interface{}{"uid": u.UID})
	})
	defer unsubscribe()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("live monitor stopping", nil)
			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}
			return nil

		case <-ticker.C:
			a.pollOnce(ctx, monitorID, *source)
		}
	}
}

func (a *app) pollOnce(ctx context.Context, monitorID, source string) {
	start := time.Now()
	page, err := a.client.FetchDetectionLogs(ctx, models.LogQuery{Page: 1, PageSize: 5})
	if err != nil {
		a.log.Warn("log poll failed", map[string]interface{}{"error": err.Error()})
		return
	}

	latest := models.LiveEvent{
		SessionID: monitorID,
		Source:    source,
		Event:     "heartbeat",
		LatencyMS: float64(time.Since(start).Milliseconds()),
	}
	if len(page.Items) > 0 {
		entry := page.Items[0]
		confidence := models.NormalizeConfidence(entry.Confidence)
		latest.Prediction = entry.Prediction
		latest.Confidence = confidence
		latest.ThreatLevel = models.ThreatLevelFor(confidence)
	}

	// Telemetry is fire-and-forget: log the failure, keep monitoring.
	if err := a.client.LogLiveEvent(ctx, latest); err != nil {
		a.log.Warn("live event rejected", map[string]interface{}{"error": err.Error()})
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
