package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/cladeview/pkg/buildinfo"
	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/layout"
	"github.com/matzehuels/cladeview/pkg/pipeline"
	"github.com/matzehuels/cladeview/pkg/sector"
	"github.com/matzehuels/cladeview/pkg/topology"
)

// TreeResponse describes a registered tree.
type TreeResponse struct {
	ID     string  `json:"id"`
	Nodes  int     `json:"nodes"`
	Tips   int     `json:"tips"`
	Scale  float64 `json:"scale"`
	Cached bool    `json:"cached"`
}

// SectorResponse carries one or more sectors' vertex data.
type SectorResponse struct {
	Buffer   []float64 `json:"buffer"`
	Sectors  int       `json:"sectors"`
	Vertices int       `json:"vertices"`
}

func sectorResponse(buf sector.Buffer) SectorResponse {
	return SectorResponse{Buffer: buf, Sectors: buf.Sectors(), Vertices: buf.Vertices()}
}

// CladeSectorRequest is the optional body of a clade sector request.
type CladeSectorRequest struct {
	Color string `json:"color"`
}

// RecolorRequest is the body of a recolor request.
type RecolorRequest struct {
	Buffer []float64 `json:"buffer"`
	Color  string    `json:"color"`
}

// TopologyResponse is the integer-indexed graph of a tree. Names[i] is the
// name of node i.
type TopologyResponse struct {
	Names []string        `json:"names"`
	Edges []topology.Edge `json:"edges"`
}

// PathResponse is a shortest path between two nodes. Found is false when
// no path exists.
type PathResponse struct {
	Found bool     `json:"found"`
	IDs   []int    `json:"ids"`
	Names []string `json:"names"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatPNG:  "image/png",
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreateTree(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts, err := s.layoutOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.runner.Layout(r.Context(), string(body), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	id := uuid.NewString()
	s.put(id, res)
	s.logger.Info("registered tree", "id", id, "nodes", res.Stats.NodeCount, "cached", res.CacheInfo.LayoutHit)

	respondJSON(w, http.StatusCreated, TreeResponse{
		ID:     id,
		Nodes:  res.Stats.NodeCount,
		Tips:   res.Stats.TipCount,
		Scale:  res.Layout.Scale,
		Cached: res.CacheInfo.LayoutHit,
	})
}

// layoutOptions overlays query parameters on the server's layout defaults.
func (s *Server) layoutOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.layout
	opts.Logger = s.logger
	q := r.URL.Query()

	floats := []struct {
		key string
		dst *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"margin", &opts.Margin},
	}
	for _, f := range floats {
		if v := q.Get(f.key); v != "" {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, cverrors.New(cverrors.ErrCodeInvalidInput, "%s: %q is not a number", f.key, v)
			}
			*f.dst = x
		}
	}
	if v := q.Get("rotations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, cverrors.New(cverrors.ErrCodeInvalidInput, "rotations: %q is not an integer", v)
		}
		opts.Rotations = n
	}
	if v := q.Get("root_origin"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, cverrors.New(cverrors.ErrCodeInvalidInput, "root_origin: %q is not a boolean", v)
		}
		opts.RootOrigin = b
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}

// tree resolves the {id} URL parameter.
func (s *Server) tree(r *http.Request) (*pipeline.Result, error) {
	id := chi.URLParam(r, "id")
	res, ok := s.get(id)
	if !ok {
		return nil, cverrors.New(cverrors.ErrCodeNotFound, "no tree %q", id)
	}
	return res, nil
}

func (s *Server) handleDeleteTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.remove(id) {
		s.respondError(w, r, cverrors.New(cverrors.ErrCodeNotFound, "no tree %q", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res.Layout)
}

func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, layout.Edges(res.Tree))
}

func (s *Server) handleNewick(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(res.Tree.Newick() + "\n"))
}

func (s *Server) handleCladeSector(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	req := CladeSectorRequest{Color: s.defaultColor}
	body, err := readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			s.respondError(w, r, cverrors.Wrap(cverrors.ErrCodeInvalidInput, err, "decode request body"))
			return
		}
		if req.Color == "" {
			req.Color = s.defaultColor
		}
	}

	buf, err := pipeline.Collapse(res, chi.URLParam(r, "name"), req.Color)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sectorResponse(buf))
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	g, _ := topology.ToIndexedGraph(res.Tree)
	respondJSON(w, http.StatusOK, TopologyResponse{Names: g.Names(), Edges: g.Edges()})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	g, ids := topology.ToIndexedGraph(res.Tree)
	index := res.Tree.Index()
	var ends [2]int
	for i, key := range []string{"from", "to"} {
		name := r.URL.Query().Get(key)
		n, ok := index[name]
		if !ok {
			s.respondError(w, r, cverrors.New(cverrors.ErrCodeNotFound, "%s: no node %q", key, name))
			return
		}
		ends[i] = ids[n]
	}

	path, err := g.ShortestPath(ends[0], ends[1])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := PathResponse{Found: path != nil, IDs: path, Names: make([]string, len(path))}
	for i, id := range path {
		out.Names[i] = g.Name(id)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	format := chi.URLParam(r, "format")
	q := r.URL.Query()
	opts := pipeline.RenderOptions{ShowIDs: q.Get("show_ids") == "true"}
	if h := q.Get("highlight"); h != "" {
		opts.Highlight = strings.Split(h, ",")
	}

	data, hit, err := s.runner.Render(r.Context(), res, format, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(data)
}

func (s *Server) handleSector(w http.ResponseWriter, r *http.Request) {
	var d sector.Descriptor
	if err := decodeJSON(w, r, &d); err != nil {
		s.respondError(w, r, err)
		return
	}
	buf, err := sector.Build(d)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sectorResponse(buf))
}

func (s *Server) handleRecolor(w http.ResponseWriter, r *http.Request) {
	var req RecolorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	buf, err := sector.Recolor(sector.Buffer(req.Buffer), req.Color)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sectorResponse(buf))
}
