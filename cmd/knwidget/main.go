package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"knwidget/internal/alarm"
	"knwidget/internal/config"
	appLog "knwidget/internal/log"
	"knwidget/internal/notify"
	"knwidget/internal/store"
	"knwidget/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	if err := appLog.Init(conf.LogLevel, conf.LogFormat); err != nil {
		appLog.Error("failed to init logger", err)
		os.Exit(1)
	}
	defer appLog.Sync()

	appLog.Info("knwidget starting",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"data_dir", conf.DataDir,
		"refresh", conf.RefreshCron,
		"exact_alarms", conf.ExactAlarms,
		"once", flags.once,
	)

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", conf.Timezone)
		loc = time.Local
	}

	st := store.New(conf.DataDir)

	var notifier alarm.Notifier
	if conf.Pushover.Token != "" && conf.Pushover.User != "" {
		notifier = notify.NewPushover(conf.Pushover.Token, conf.Pushover.User)
	} else {
		appLog.Info("no pushover credentials, class notices go to the log only")
		notifier = notify.Logger{}
	}

	port := alarm.NewTimerPort(notifier, conf.ExactAlarms)
	defer port.Close()

	sched := alarm.New(st, port, loc, nil)
	srv := web.NewServer(conf, st, sched, loc, nil)

	if flags.once {
		// Single-shot: render widget.png from the stored snapshot and exit.
		if err := srv.RenderWidgetFile(); err != nil {
			appLog.Error("widget render failed", err)
			os.Exit(1)
		}
		appLog.Info("widget rendered", "path", conf.DataDir+"/"+web.WidgetFile)
		return
	}

	sched.Start()
	defer sched.Stop()

	// Periodic widget refresh keeps the pre-rendered grid current for
	// launchers that poll the file.
	refresh := cron.New(cron.WithLocation(loc))
	if _, err := refresh.AddFunc(conf.RefreshCron, func() {
		if err := srv.RenderWidgetFile(); err != nil {
			appLog.Error("scheduled widget refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh cron, periodic refresh disabled", err, "cron", conf.RefreshCron)
	} else {
		refresh.Start()
		defer refresh.Stop()
	}

	httpServer := &http.Server{
		Addr:         conf.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info("HTTP server started", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLog.Info("signal received, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}

	appLog.Info("knwidget exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Render widget.png once from the stored snapshot and exit")

	flag.Parse()

	return cfg
}
