// Package regionapi implements the HTTP API for resolving U.S. regions.
//
// All endpoints accept GET, HEAD and OPTIONS, and respond with JSON objects
// containing a boolean success field. Failing to resolve a region is not an
// error: the result is null.
package regionapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"github.com/pg9182/ip2x"
	"github.com/r2northstar/usregion/pkg/usregion"
	"github.com/rs/zerolog/hlog"
)

// Handler serves requests for the region API.
type Handler struct {
	// LookupIP gets the IP2Location record for an address. If not provided,
	// /v1/locate will be unavailable.
	LookupIP func(netip.Addr) (ip2x.Record, error)

	// NotFound handles requests not handled by this Handler.
	NotFound http.Handler

	resolver    atomic.Pointer[usregion.Resolver]
	metricsInit sync.Once
	metricsObj  apiMetrics
}

// SetResolver atomically replaces the resolver used for new requests. If r is
// nil, the default resolver for the builtin table is used.
func (h *Handler) SetResolver(r *usregion.Resolver) {
	h.resolver.Store(r)
}

// Resolver gets the current resolver.
func (h *Handler) Resolver() *usregion.Resolver {
	if r := h.resolver.Load(); r != nil {
		return r
	}
	return usregion.Default()
}

// ServeHTTP routes requests to Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var notPanicked bool // this lets us catch panics without swallowing them
	defer func() {
		if !notPanicked {
			h.m().request_panics_total.Inc()
		}
	}()

	w.Header().Set("Server", "usregion")

	switch r.URL.Path {
	case "/v1/normalize":
		h.handleNormalize(w, r)
	case "/v1/regions":
		h.handleRegions(w, r)
	case "/v1/locate":
		h.handleLocate(w, r)
	default:
		if h.NotFound == nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		} else {
			notPanicked = true
			h.NotFound.ServeHTTP(w, r)
		}
	}
	notPanicked = true
}

// checkMethod handles OPTIONS and rejects anything other than HEAD and GET,
// returning false if the request has been handled.
func checkMethod(w http.ResponseWriter, r *http.Request, reject func()) bool {
	if r.Method != http.MethodOptions && r.Method != http.MethodHead && r.Method != http.MethodGet {
		reject()
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
	if r.Method == http.MethodOptions {
		w.Header().Set("Allow", "OPTIONS, HEAD, GET")
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	return true
}

// respFail writes a {success:false,error:ErrorObj} response with the provided
// response status.
func respFail(w http.ResponseWriter, r *http.Request, status int, obj ErrorObj) {
	if rid, ok := hlog.IDFromRequest(r); ok {
		respJSON(w, r, status, map[string]any{
			"success":    false,
			"error":      obj,
			"request_id": rid.String(),
		})
	} else {
		respJSON(w, r, status, map[string]any{
			"success": false,
			"error":   obj,
		})
	}
}

// respJSON writes the JSON encoding of obj with the provided response status.
func respJSON(w http.ResponseWriter, r *http.Request, status int, obj any) {
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	buf, err := json.Marshal(obj)
	if err != nil {
		panic(err)
	}
	hlog.FromRequest(r).Trace().Msgf("json api response %.2048s", string(buf))
	buf = append(buf, '\n')
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

// respMaybeCompress writes buf with the provided response status, compressing
// it with gzip if the client supports it and the result is smaller.
func respMaybeCompress(w http.ResponseWriter, r *http.Request, status int, buf []byte) {
	w.Header().Add("Vary", "Accept-Encoding")
	for _, e := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if t, _, _ := strings.Cut(e, ";"); strings.TrimSpace(t) == "gzip" {
			var cbuf bytes.Buffer
			gw := gzip.NewWriter(&cbuf)
			if _, err := gw.Write(buf); err != nil {
				break
			}
			if err := gw.Close(); err != nil {
				break
			}
			if cbuf.Len() < int(float64(len(buf))*0.8) {
				buf = cbuf.Bytes()
				w.Header().Set("Content-Encoding", "gzip")
			}
			break
		}
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(buf)
	}
}

// nullable returns nil if s is empty.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
