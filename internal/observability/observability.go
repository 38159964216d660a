// Package observability wires tracing and profiling for the binaries.
package observability

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/config"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/cockroachdb/errors"
	"github.com/grafana/pyroscope-go"
	"github.com/uptrace/uptrace-go/uptrace"
)

// Feature selects which parts of the stack a binary turns on. Each one is
// still gated by its own config flag.
type Feature uint8

const (
	FeatureTracing Feature = 1 << iota
	FeatureProfiling
	FeatureDebugServer

	FeatureAll = FeatureTracing | FeatureProfiling | FeatureDebugServer
)

// Stack holds whatever Start brought up so it can be torn down in reverse.
type Stack struct {
	logger  *logging.Logger
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func(context.Context) error
}

// Start brings up the requested features. On error everything started so far
// is shut down before returning.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger, features Feature) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Stack{logger: logger.Named("observability")}

	steps := []struct {
		feature Feature
		name    string
		start   func(config.Config) (func(context.Context) error, error)
	}{
		{FeatureTracing, "uptrace", s.startTracing},
		{FeatureProfiling, "pyroscope", s.startProfiling},
		{FeatureDebugServer, "pprof", s.startDebugServer},
	}
	for _, step := range steps {
		if features&step.feature == 0 {
			continue
		}
		closeFn, err := step.start(cfg)
		if err != nil {
			_ = s.Shutdown(ctx)
			return nil, errors.Wrapf(err, "start %s", step.name)
		}
		if closeFn != nil {
			s.closers = append(s.closers, namedCloser{name: step.name, close: closeFn})
		}
	}
	return s, nil
}

// Enabled lists the parts that are running, in start order.
func (s *Stack) Enabled() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.closers))
	for _, c := range s.closers {
		names = append(names, c.name)
	}
	return names
}

// Shutdown stops every running part, last started first, and joins the
// errors.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.close(ctx); err != nil {
			errs = append(errs, errors.Wrapf(err, "stop %s", c.name))
			continue
		}
		s.logger.Debug("stopped", "part", c.name)
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Stack) startTracing(cfg config.Config) (func(context.Context) error, error) {
	dsn := strings.TrimSpace(cfg.UptraceDSN)
	if !cfg.UptraceEnabled || dsn == "" {
		s.logger.Info("tracing off", "enabled", cfg.UptraceEnabled, "dsn_set", dsn != "")
		return nil, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	s.logger.Info("tracing on", "service_version", cfg.ServiceVersion)
	return uptrace.Shutdown, nil
}

func (s *Stack) startProfiling(cfg config.Config) (func(context.Context) error, error) {
	if !cfg.PyroscopeEnabled {
		s.logger.Info("continuous profiling off")
		return nil, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.PyroscopeAppName,
		ServerAddress:   cfg.PyroscopeServerAddress,
		AuthToken:       cfg.PyroscopeAuthToken,
		UploadRate:      cfg.PyroscopeUploadRate,
		Tags:            profileTags(cfg),
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("continuous profiling on", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return func(context.Context) error { return profiler.Stop() }, nil
}

// Most sync time is spent waiting on FaceIt and Discord, so goroutine and
// block profiles matter as much as CPU.
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileBlockCount,
	pyroscope.ProfileBlockDuration,
	pyroscope.ProfileMutexDuration,
}

func profileTags(cfg config.Config) map[string]string {
	tags := map[string]string{}
	for key, value := range map[string]string{
		"env":     cfg.AppEnv,
		"service": cfg.ServiceName,
		"version": cfg.ServiceVersion,
	} {
		if value = strings.TrimSpace(value); value != "" {
			tags[key] = value
		}
	}
	return tags
}

func (s *Stack) startDebugServer(cfg config.Config) (func(context.Context) error, error) {
	if !cfg.PprofEnabled {
		return nil, nil
	}

	// Bind synchronously so a taken port fails startup instead of a goroutine.
	listener, err := net.Listen("tcp", cfg.PprofAddr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           debugMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug server stopped", "error", err)
		}
	}()
	s.logger.Info("debug server listening", "addr", listener.Addr().String())
	return srv.Shutdown, nil
}

func debugMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
