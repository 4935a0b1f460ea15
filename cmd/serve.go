package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/step"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP trigger server for the pipeline steps",
	Long: "Exposes every pipeline step as POST /steps/{name} so a scheduler or " +
		"webhook can trigger runs. Steps run one at a time; the workbook is not " +
		"safe for concurrent writers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &stepServer{env: env}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}))
		r.Get("/healthz", srv.health)
		r.Post("/steps/{name}", srv.trigger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: r,
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("trigger server listening", zap.String("addr", httpSrv.Addr))
			if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutCtx)
		})

		return g.Wait()
	},
}

type stepServer struct {
	env *cmdEnv

	// mu serializes step runs. The workbook store has no row locking.
	mu sync.Mutex
}

type runResult struct {
	RunID     string `json:"run_id"`
	Step      string `json:"step"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

func (s *stepServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *stepServer) trigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	runID := uuid.NewString()
	log := zap.L().With(zap.String("step", name), zap.String("run_id", runID))

	run, err := s.stepFunc(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info("step triggered")
	sum, err := run(r.Context())
	if err != nil {
		log.Error("step failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.env.store.Flush(); err != nil {
		log.Error("flush failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runResult{
		RunID:     runID,
		Step:      name,
		Processed: sum.Processed,
		Failed:    sum.Failed,
		Skipped:   sum.Skipped,
	})
}

// stepFunc maps a URL step name to a runner that builds only the clients
// that step needs. Credential errors surface at trigger time, not startup.
func (s *stepServer) stepFunc(name string) (func(context.Context) (step.Summary, error), error) {
	switch name {
	case "fetch":
		return func(ctx context.Context) (step.Summary, error) {
			hs, err := s.env.HubSpot()
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, hs, nil, nil, nil).FetchAccounts(ctx)
		}, nil
	case "contacts":
		return func(ctx context.Context) (step.Summary, error) {
			ap, err := s.env.Apollo()
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, nil, ap, nil, nil).DiscoverContacts(ctx)
		}, nil
	case "enrich-accounts":
		return func(ctx context.Context) (step.Summary, error) {
			bq, err := s.env.BigQuery(ctx)
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, nil, nil, bq, nil).EnrichAccounts(ctx)
		}, nil
	case "enrich-contacts":
		return func(ctx context.Context) (step.Summary, error) {
			bq, err := s.env.BigQuery(ctx)
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, nil, nil, bq, nil).EnrichContacts(ctx)
		}, nil
	case "generate":
		return func(ctx context.Context) (step.Summary, error) {
			ai, err := s.env.Anthropic()
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, nil, nil, nil, ai).GenerateMessages(ctx)
		}, nil
	case "push":
		return func(ctx context.Context) (step.Summary, error) {
			ap, err := s.env.Apollo()
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, nil, ap, nil, nil).PushMessages(ctx)
		}, nil
	case "sequence":
		return func(ctx context.Context) (step.Summary, error) {
			ap, err := s.env.Apollo()
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, nil, ap, nil, nil).SequenceContacts(ctx)
		}, nil
	case "catalog":
		return func(ctx context.Context) (step.Summary, error) {
			ai, err := s.env.Anthropic()
			if err != nil {
				return step.Summary{}, err
			}
			return pipeline.New(cfg, s.env.store, s.env.resolver, nil, nil, nil, ai).RebuildCatalog(ctx)
		}, nil
	default:
		return nil, fmt.Errorf("unknown step %q", name)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
