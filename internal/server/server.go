package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/calc"
	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/sheet"
	"github.com/matzehuels/sheetcalc/pkg/storage"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

const shutdownTimeout = 10 * time.Second

// Config configures a Server. Repo is required.
type Config struct {
	Repo  storage.Repository
	Cache cache.Cache // rendered graphs; nil disables caching
	Keyer cache.Keyer // nil uses cache.NewDefaultKeyer

	// GraphTTL is the lifetime of cached graphs. Zero uses cache.TTLGraph.
	GraphTTL time.Duration

	// StoreOptions are applied to every sheet.Store the server creates,
	// typically a name normalizer.
	StoreOptions []sheet.Option

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	Logger *log.Logger
}

// Server serves the workbook API.
type Server struct {
	repo      storage.Repository
	cache     cache.Cache
	keyer     cache.Keyer
	graphTTL  time.Duration
	storeOpts []sheet.Option
	metrics   http.Handler
	logger    *log.Logger

	mu        sync.Mutex
	workbooks map[string]*entry
}

// entry is the in-memory slot of one workbook. Its mutex guards loading
// and serializes mutate-and-save and delete, so repository writes happen in
// request order. engine is nil until loaded and is never replaced. A
// retired entry has left the map; holders must look the workbook up again.
type entry struct {
	mu      sync.Mutex
	engine  *calc.Engine
	retired bool
}

// New creates a server from cfg.
func New(cfg Config) *Server {
	s := &Server{
		repo:      cfg.Repo,
		cache:     cfg.Cache,
		keyer:     cfg.Keyer,
		graphTTL:  cfg.GraphTTL,
		storeOpts: cfg.StoreOptions,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		workbooks: make(map[string]*entry),
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.graphTTL == 0 {
		s.graphTTL = cache.TTLGraph
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Handler returns the HTTP handler for every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/workbooks", func(r chi.Router) {
		r.Post("/", s.createWorkbook)
		r.Get("/", s.listWorkbooks)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getWorkbook)
			r.Delete("/", s.deleteWorkbook)
			r.Get("/graph", s.getGraph)
			r.Get("/cells/{name}", s.getCell)
			r.Put("/cells/{name}", s.putCell)
		})
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// slot returns the map entry for id, adding an unloaded one if needed.
// It never blocks on I/O, so s.mu is only held briefly.
func (s *Server) slot(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.workbooks[id]
	if !ok {
		e = &entry{}
		s.workbooks[id] = e
	}
	return e
}

// acquire returns the live entry for id with e.mu held, reading the
// workbook from the repository on first use. Loads of different workbooks
// run concurrently; loads of the same one happen once.
func (s *Server) acquire(ctx context.Context, id string) (*entry, error) {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := s.slot(id)
		e.mu.Lock()
		if e.retired {
			e.mu.Unlock()
			continue
		}
		if e.engine == nil {
			engine, err := s.read(ctx, id)
			if err != nil {
				s.retire(id, e)
				e.mu.Unlock()
				return nil, err
			}
			e.engine = engine
		}
		return e, nil
	}
}

// load returns the engine for id for reading.
func (s *Server) load(ctx context.Context, id string) (*calc.Engine, error) {
	e, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	return e.engine, nil
}

func (s *Server) read(ctx context.Context, id string) (*calc.Engine, error) {
	wb, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	store, err := wb.NewStore(s.storeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("restore workbook %s: %w", id, err)
	}
	s.logger.Debug("loaded workbook", "id", id, "cells", store.Len())
	return calc.New(store, calc.WithLogger(s.logger)), nil
}

// remove deletes id from the repository while holding its entry, so no
// mutation in flight can save it back afterwards.
func (s *Server) remove(ctx context.Context, id string) error {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return err
	}
	for {
		e := s.slot(id)
		e.mu.Lock()
		if e.retired {
			e.mu.Unlock()
			continue
		}
		err := s.repo.Delete(ctx, id)
		if err == nil || e.engine == nil {
			s.retire(id, e)
		}
		e.mu.Unlock()
		return err
	}
}

// retire drops e from the map. Callers hold e.mu.
func (s *Server) retire(id string, e *entry) {
	e.retired = true
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workbooks[id] == e {
		delete(s.workbooks, id)
	}
}

// save writes the engine's cells to the repository. Callers hold e.mu.
func (s *Server) save(ctx context.Context, id string, e *entry) error {
	store := e.engine.Store()
	if err := s.repo.Save(ctx, id, workbook.Capture(store)); err != nil {
		return fmt.Errorf("save workbook %s: %w", id, err)
	}
	store.MarkSaved()
	return nil
}

func (s *Server) storeOptions() []sheet.Option {
	return append(slices.Clone(s.storeOpts), sheet.WithLogger(s.logger))
}
