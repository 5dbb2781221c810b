package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/calc"
	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/render"
	"github.com/matzehuels/sheetcalc/pkg/storage"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// maxBodySize bounds request bodies.
const maxBodySize = 4 << 20

func (s *Server) createWorkbook(w http.ResponseWriter, r *http.Request) {
	wb := &workbook.Workbook{Version: workbook.Version}
	if err := decodeBody(w, r, wb, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	store, err := wb.NewStore(s.storeOptions()...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := storage.NewID()
	e := &entry{engine: calc.New(store, calc.WithLogger(s.logger))}
	if err := s.save(r.Context(), id, e); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	s.workbooks[id] = e
	s.mu.Unlock()

	s.logger.Info("created workbook", "id", id, "cells", store.Len())
	w.Header().Set("Location", "/workbooks/"+id)
	writeJSON(w, http.StatusCreated, s.workbookJSON(id, e.engine))
}

func (s *Server) listWorkbooks(w http.ResponseWriter, r *http.Request) {
	ids, err := s.repo.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *Server) getWorkbook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	engine, err := s.load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.workbookJSON(id, engine))
}

func (s *Server) deleteWorkbook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.remove(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("deleted workbook", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getCell(w http.ResponseWriter, r *http.Request) {
	engine, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	store := engine.Store()
	name, err := store.CellName(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, _ := store.Content(name)
	v, _ := engine.Value(name)
	writeJSON(w, http.StatusOK, newCellJSON(name, c, v))
}

type setCellRequest struct {
	Contents *string `json:"contents"`
}

func (s *Server) putCell(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateWorkbookID(id); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req setCellRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Contents == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeMissingContent, "request body has no contents"))
		return
	}

	e, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer e.mu.Unlock()

	order, err := e.engine.Set(chi.URLParam(r, "name"), *req.Contents)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.save(r.Context(), id, e); err != nil {
		// The repository no longer matches memory; reload on next use.
		s.retire(id, e)
		s.writeError(w, r, err)
		return
	}

	store := e.engine.Store()
	affected := make([]cellJSON, 0, len(order))
	for _, name := range order {
		c, _ := store.Content(name)
		v, _ := e.engine.Value(name)
		affected = append(affected, newCellJSON(name, c, v))
	}
	writeJSON(w, http.StatusOK, map[string][]cellJSON{"affected": affected})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateWorkbookID(id); err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := cache.GraphKeyOpts{Format: q.Get("format")}
	if opts.Format == "" {
		opts.Format = "dot"
	}
	if opts.Format != "dot" && opts.Format != "svg" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "unknown graph format %q", opts.Format))
		return
	}
	if raw := q.Get("values"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "values must be a boolean, got %q", raw))
			return
		}
		opts.Values = v
	}

	// Hold the workbook still so the key matches the rendered cells.
	e, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.graph(r, e.engine, opts)
	e.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if opts.Format == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// graph renders the dependency graph of engine, going through the cache.
// Cache failures are logged and otherwise ignored.
func (s *Server) graph(r *http.Request, engine *calc.Engine, opts cache.GraphKeyOpts) ([]byte, error) {
	ctx := r.Context()
	key := s.keyer.GraphKey(workbook.Capture(engine.Store()).Hash(), opts)

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("graph cache read failed", "key", key, "err", err)
	}
	if hit {
		return data, nil
	}

	ro := render.Options{Contents: true}
	if opts.Values {
		ro.Values = engine.Values()
	}
	data = []byte(render.ToDOT(engine.Store(), ro))
	if opts.Format == "svg" {
		if data, err = render.RenderSVG(ctx, string(data)); err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
	}

	if err := s.cache.Set(ctx, key, data, s.graphTTL); err != nil {
		s.logger.Warn("graph cache write failed", "key", key, "err", err)
	}
	return data, nil
}

func (s *Server) workbookJSON(id string, engine *calc.Engine) workbookJSON {
	store := engine.Store()
	values := engine.Values()
	names := store.NonEmptyCellNames()
	out := workbookJSON{ID: id, Version: workbook.Version, Cells: make([]cellJSON, 0, len(names))}
	for _, name := range names {
		c, _ := store.Content(name)
		out.Cells = append(out.Cells, newCellJSON(name, c, values[name]))
	}
	return out
}

// decodeBody decodes a JSON request body into v. An empty body is accepted
// only when optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
