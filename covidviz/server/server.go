/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Binary server serves covidviz charts and scene queries, or renders a
// single chart to a file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/ilhamster/covidviz/covidviz/config"
	"github.com/ilhamster/covidviz/covidviz/logging"
	"github.com/ilhamster/covidviz/covidviz/render"
	"github.com/ilhamster/covidviz/covidviz/service"
)

var cli struct {
	Config string `default:"" help:"Configuration file path (.toml, .yaml or .yml)." type:"path"`

	Log struct {
		Level  string `default:"" help:"${help_log_level}"`
		Format string `default:"" help:"${help_log_format}"`
	} `embed:"" prefix:"log-"`

	Serve struct {
		Listen         string `default:"" help:"Listen address; overrides server.listen."`
		ProcessMetrics bool   `default:"true" help:"Export Go runtime and process metrics." negatable:""`
	} `cmd:"" default:"1" help:"Serve charts and scene queries."`

	Render struct {
		Dataset     string   `default:"${default_dataset}" help:"Dataset to chart."`
		Query       string   `default:"covid.timeseries" help:"Scene query to chart."`
		ChartType   string   `default:"line" help:"Chart type for timeseries: 'line' or 'area'."`
		Excluded    []string `help:"Categories to leave out."`
		Highlighted string   `default:"" help:"Category to highlight."`
		ZoomStart   string   `default:"" help:"First date shown, as YYYY-MM-DD."`
		ZoomEnd     string   `default:"" help:"Last date shown, as YYYY-MM-DD."`
		Width       int      `default:"0" help:"Image width; defaults to selection.plot_width."`
		Height      int      `default:"0" help:"Image height; defaults to selection.plot_height."`
		Title       string   `default:"" help:"Chart title."`
		Format      string   `default:"" help:"Image format: 'svg' or 'png'. Defaults to the output file's extension, or svg."`
		Output      string   `short:"o" default:"-" help:"Output file, or '-' for stdout."`
	} `cmd:"" help:"Render a single chart."`
}

var kongOptions = []kong.Option{
	kong.Name("covidviz"),
	kong.Description("Charts of COVID-19 positive test results by state."),
	kong.Vars{
		"default_dataset": config.DefaultDataset,
		"help_log_format": "Log format: 'console' or 'json'; overrides log.format.",
		"help_log_level":  "Log level: 'debug', 'info', 'warn' or 'error'; overrides log.level.",
	},
	kong.DefaultEnvars("COVIDVIZ"),
}

func main() {
	kongCtx := kong.Parse(&cli, kongOptions...)

	cfg, err := config.Load(cli.Config)
	kongCtx.FatalIfErrorf(err)
	if cli.Log.Level != "" {
		cfg.Log.Level = cli.Log.Level
	}
	if cli.Log.Format != "" {
		cfg.Log.Format = cli.Log.Format
	}
	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	kongCtx.FatalIfErrorf(err)
	defer logger.Sync()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err != nil {
		logger.Sugar().Warnf("Failed to set GOMAXPROCS: %s.", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd := kongCtx.Command(); cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "render":
		err = renderChart(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		logger.Fatal("Failed", zap.Error(err))
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cli.Serve.Listen != "" {
		cfg.Server.Listen = cli.Serve.Listen
	}
	opts := []service.Option{service.WithLogger(logger)}
	if cli.Serve.ProcessMetrics {
		opts = append(opts, service.WithProcessMetrics())
	}
	svc, err := service.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create covidviz service: %w", err)
	}
	defer svc.Close()

	mux := http.NewServeMux()
	svc.RegisterHandlers(mux)
	lis, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get hostname: %w", err)
	}
	port := lis.Addr().(*net.TCPAddr).Port
	// Provide OSC 8 (https://en.wikipedia.org/wiki/ANSI_escape_code#OSC) link for
	// compatible terminals.
	fmt.Printf("Serving covidviz at \x1B]8;;http://%[1]s:%[2]d\x07http://%[1]s:%[2]d\x1B]8;;\x07\n", hostname, port)
	logger.Info("Listening", zap.String("addr", lis.Addr().String()))
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// formatOf returns the image format to render: the --format flag if set,
// otherwise the output file's extension, otherwise SVG.
func formatOf(format, output string) (render.Format, error) {
	if format != "" {
		return render.ParseFormat(format)
	}
	if i := strings.LastIndex(output, "."); i >= 0 && output != "-" {
		if f, err := render.ParseFormat(output[i+1:]); err == nil {
			return f, nil
		}
	}
	return render.SVG, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(service.DateFormat, s)
}

func renderChart(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	rc := cli.Render
	format, err := formatOf(rc.Format, rc.Output)
	if err != nil {
		return err
	}
	cr := service.ChartRequest{
		Dataset:     rc.Dataset,
		Query:       rc.Query,
		ChartType:   rc.ChartType,
		Excluded:    rc.Excluded,
		Highlighted: rc.Highlighted,
		Width:       rc.Width,
		Height:      rc.Height,
		Title:       rc.Title,
		Format:      format,
	}
	if cr.ZoomStart, err = parseDate(rc.ZoomStart); err != nil {
		return fmt.Errorf("--zoom-start: %w", err)
	}
	if cr.ZoomEnd, err = parseDate(rc.ZoomEnd); err != nil {
		return fmt.Errorf("--zoom-end: %w", err)
	}
	svc, err := service.New(cfg, service.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create covidviz service: %w", err)
	}
	defer svc.Close()

	var w io.Writer = os.Stdout
	if rc.Output != "-" {
		f, err := os.Create(rc.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := svc.Render(ctx, w, cr); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	logger.Debug("Rendered chart", zap.String("output", rc.Output), zap.String("format", string(format)))
	return nil
}
