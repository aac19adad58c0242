// Package server exposes layouts, sector buffers and topology over HTTP.
//
// Trees are uploaded as Newick text, laid out once through the shared
// pipeline runner and kept in an in-memory registry keyed by a random id.
// Every later request addresses a tree by that id:
//
//	POST   /api/trees                               Newick body → {id, ...}
//	GET    /api/trees/{id}/nodes                    layout snapshot
//	GET    /api/trees/{id}/edges                    parent→child segments
//	GET    /api/trees/{id}/newick                   named, normalized Newick
//	POST   /api/trees/{id}/clades/{name}/sector     {color} → vertex buffer
//	GET    /api/trees/{id}/topology                 integer-indexed graph
//	GET    /api/trees/{id}/topology/path?from=&to=  shortest path
//	GET    /api/trees/{id}/artifacts/{format}       json, svg, dot or png
//	POST   /api/trees/{id}/metadata?sep=&skip_rows= attach a metadata table
//	GET    /api/trees/{id}/metadata                 the attached table
//	GET    /api/trees/{id}/metadata/headers         leaf and internal columns
//	GET    /api/trees/{id}/metadata/values?column=  distinct values of a column
//	POST   /api/trees/{id}/highlight                {column, value, color} → buffer
//	DELETE /api/trees/{id}
//	POST   /api/sectors                             descriptor → vertex buffer
//	POST   /api/sectors/recolor                     {buffer, color} → buffer
//	GET    /api/version, /healthz, /metrics
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cladeview/pkg/metadata"
	"github.com/matzehuels/cladeview/pkg/pipeline"
)

const (
	// maxBodyBytes bounds request bodies, Newick uploads included.
	maxBodyBytes = 32 << 20

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Runner lays trees out. Required.
	Runner *pipeline.Runner
	// Logger receives request logs. Nil discards them.
	Logger *log.Logger
	// Layout holds the default layout options for uploaded trees.
	Layout pipeline.Options
	// DefaultColor is used for clade sectors requested without a color.
	DefaultColor string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// Server is the HTTP front end. It is safe for concurrent use.
type Server struct {
	runner       *pipeline.Runner
	logger       *log.Logger
	layout       pipeline.Options
	defaultColor string
	metrics      http.Handler

	// Registered trees are laid out before insertion and only read after.
	// Metadata tables are replaced whole, never mutated.
	mu    sync.RWMutex
	trees map[string]*pipeline.Result
	meta  map[string]*metadata.Table
}

// New creates a server from opts.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	color := opts.DefaultColor
	if color == "" {
		color = "ff0000"
	}
	return &Server{
		runner:       opts.Runner,
		logger:       logger,
		layout:       opts.Layout,
		defaultColor: color,
		metrics:      opts.Metrics,
		trees:        make(map[string]*pipeline.Result),
		meta:         make(map[string]*metadata.Table),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/version", s.handleVersion)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/trees", func(r chi.Router) {
		r.Post("/", s.handleCreateTree)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteTree)
			r.Get("/nodes", s.handleNodes)
			r.Get("/edges", s.handleEdges)
			r.Get("/newick", s.handleNewick)
			r.Post("/clades/{name}/sector", s.handleCladeSector)
			r.Get("/topology", s.handleTopology)
			r.Get("/topology/path", s.handlePath)
			r.Get("/artifacts/{format}", s.handleArtifact)
			r.Post("/metadata", s.handlePutMetadata)
			r.Get("/metadata", s.handleMetadata)
			r.Get("/metadata/headers", s.handleHeaders)
			r.Get("/metadata/values", s.handleValues)
			r.Post("/highlight", s.handleHighlight)
		})
	})

	r.Post("/api/sectors", s.handleSector)
	r.Post("/api/sectors/recolor", s.handleRecolor)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Len returns the number of registered trees.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trees)
}

func (s *Server) put(id string, res *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[id] = res
}

func (s *Server) get(id string) (*pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.trees[id]
	return res, ok
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.trees[id]
	delete(s.trees, id)
	delete(s.meta, id)
	return ok
}

// putMetadata attaches table to a registered tree.
func (s *Server) putMetadata(id string, table *metadata.Table) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trees[id]; !ok {
		return false
	}
	s.meta[id] = table
	return true
}

func (s *Server) getMetadata(id string) (*metadata.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.meta[id]
	return table, ok
}
