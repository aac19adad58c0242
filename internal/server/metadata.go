package server

import (
	"bytes"
	"net/http"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/metadata"
	"github.com/matzehuels/cladeview/pkg/pipeline"
)

// MetadataResponse summarizes an attached metadata table.
type MetadataResponse struct {
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
	// Unknown lists ids that name no node in the tree.
	Unknown []string `json:"unknown,omitempty"`
}

// TableResponse is a metadata table in file order.
type TableResponse struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// HeadersResponse splits metadata columns by the nodes they describe.
type HeadersResponse struct {
	Leaf     []string `json:"leaf"`
	Internal []string `json:"internal"`
}

// ValuesResponse lists the distinct values of one column.
type ValuesResponse struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// HighlightRequest selects clades by a metadata attribute.
type HighlightRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	Color  string `json:"color"`
}

// HighlightResponse carries the sectors of every selected clade.
type HighlightResponse struct {
	SectorResponse
	Clades  []string `json:"clades"`
	Skipped []string `json:"skipped,omitempty"`
}

// metadataOptions reads sep and skip_rows from the query.
func metadataOptions(r *http.Request) (metadata.Options, error) {
	var opts metadata.Options
	q := r.URL.Query()
	if sep := q.Get("sep"); sep != "" {
		if utf8.RuneCountInString(sep) != 1 {
			return opts, cverrors.New(cverrors.ErrCodeInvalidInput, "sep %q must be a single character", sep)
		}
		opts.Separator, _ = utf8.DecodeRuneInString(sep)
	}
	if v := q.Get("skip_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, cverrors.New(cverrors.ErrCodeInvalidInput, "skip_rows: %q is not an integer", v)
		}
		opts.SkipRows = n
	}
	return opts, nil
}

func (s *Server) handlePutMetadata(w http.ResponseWriter, r *http.Request) {
	res, err := s.tree(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts, err := metadataOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	table, err := metadata.Read(bytes.NewReader(body), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if !s.putMetadata(id, table) {
		s.respondError(w, r, cverrors.New(cverrors.ErrCodeNotFound, "no tree %q", id))
		return
	}

	index := res.Tree.Index()
	out := MetadataResponse{Columns: table.Columns, Rows: table.Len()}
	for _, nid := range table.IDs() {
		if _, ok := index[nid]; !ok {
			out.Unknown = append(out.Unknown, nid)
		}
	}
	s.logger.Info("attached metadata", "id", id, "rows", table.Len(), "unknown", len(out.Unknown))
	respondJSON(w, http.StatusOK, out)
}

// treeMetadata resolves the tree and its attached table.
func (s *Server) treeMetadata(r *http.Request) (*pipeline.Result, *metadata.Table, error) {
	res, err := s.tree(r)
	if err != nil {
		return nil, nil, err
	}
	id := chi.URLParam(r, "id")
	table, ok := s.getMetadata(id)
	if !ok {
		return nil, nil, cverrors.New(cverrors.ErrCodeNotFound, "tree %q has no metadata", id)
	}
	return res, table, nil
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	_, table, err := s.treeMetadata(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := TableResponse{Columns: table.Columns, Rows: make([]map[string]string, 0, table.Len())}
	for _, id := range table.IDs() {
		out.Rows = append(out.Rows, table.Rows[id])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	res, table, err := s.treeMetadata(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	leaf, internal := pipeline.Headers(res, table)
	out := HeadersResponse{Leaf: []string{}, Internal: []string{}}
	out.Leaf = append(out.Leaf, leaf...)
	out.Internal = append(out.Internal, internal...)
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	_, table, err := s.treeMetadata(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	column := r.URL.Query().Get("column")
	if !slices.Contains(table.Columns, column) {
		s.respondError(w, r, cverrors.New(cverrors.ErrCodeNotFound, "metadata has no column %q", column))
		return
	}
	respondJSON(w, http.StatusOK, ValuesResponse{Column: column, Values: table.Values(column)})
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	res, table, err := s.treeMetadata(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req HighlightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Color == "" {
		req.Color = s.defaultColor
	}

	sel, err := pipeline.SelectClades(res, table, req.Column, req.Value, req.Color)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := HighlightResponse{
		SectorResponse: sectorResponse(sel.Buffer()),
		Clades:         []string{},
		Skipped:        append(append([]string{}, sel.Missing...), sel.Tips...),
	}
	out.Clades = append(out.Clades, sel.Clades...)
	respondJSON(w, http.StatusOK, out)
}
