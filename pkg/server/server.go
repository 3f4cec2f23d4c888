package server

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/r2northstar/usregion/db/regiondb"
	"github.com/r2northstar/usregion/pkg/api/regionapi"
	"github.com/r2northstar/usregion/pkg/usregion"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type Server struct {
	Logger zerolog.Logger

	Addr          []string
	AddrTLS       []string
	Handler       http.Handler
	NotifySocket  string
	MetricsSecret string
	API           *regionapi.Handler
	TLSConfig     *tls.Config

	reload []func()
	closer []io.Closer
	closed bool
}

// NewServer configures a new server using c, which is assumed to be initialized
// to default or configured values (as done by UnmarshalEnv). It will perform
// any additional config checks as required.
func NewServer(c *Config) (*Server, error) {
	var s Server
	var success bool

	s.Addr = c.Addr
	s.AddrTLS = c.AddrTLS
	s.NotifySocket = c.NotifySocket
	s.MetricsSecret = c.MetricsSecret

	if l, fn, err := configureLogging(c); err == nil {
		s.Logger = l
		s.reload = append(s.reload, fn)
	} else {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	defer func() {
		if !success {
			s.close()
		}
	}()

	var m middlewares

	m.Add(hlog.RequestIDHandler("", "X-Usregion-Request-Id"))

	if len(c.Host) != 0 {
		ns := map[string]struct{}{}
		for _, n := range c.Host {
			ns[strings.ToLower(n)] = struct{}{}
		}
		m.Add(func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, ok := ns[strings.ToLower(stripPort(r.Host))]; ok {
					h.ServeHTTP(w, r)
					return
				}
				w.Header().Set("Cache-Control", "private, no-cache, no-store")
				w.Header().Set("Expires", "0")
				w.Header().Set("Pragma", "no-cache")
				http.Error(w, "Go away.", http.StatusForbidden)
			})
		})
	}

	m.Add(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		var e *zerolog.Event
		if r.URL.Path == "/metrics" {
			e = s.Logger.Debug()
		} else {
			e = s.Logger.Info()
		}
		if rid, ok := hlog.IDFromRequest(r); ok {
			e = e.Stringer("rid", rid)
		}
		e.
			Str("request_ip", r.RemoteAddr).
			Str("request_host", r.Host).
			Str("request_method", r.Method).
			Stringer("request_uri", r.URL).
			Str("request_user_agent", r.UserAgent()).
			Int("response_status", status).
			Int("response_size", size).
			Dur("response_duration", duration).
			Msg("handle request")
	}))

	m.Add(hlog.NewHandler(s.Logger.With().Str("component", "api").Logger()))
	m.Add(hlog.RequestIDHandler("rid", ""))

	s.API = new(regionapi.Handler)
	s.API.NotFound = http.HandlerFunc(s.serveRest)

	if load, err := configureRegionData(c, &s); err == nil {
		if res, err := load(context.Background()); err == nil {
			s.API.SetResolver(res)
		} else {
			return nil, fmt.Errorf("initialize region data: %w", err)
		}
		s.reload = append(s.reload, func() {
			if res, err := load(context.Background()); err == nil {
				s.API.SetResolver(res)
				s.Logger.Info().Int("regions", res.Table().Len()).Msg("reloaded region data")
			} else {
				s.Logger.Err(err).Msg("failed to reload region data, keeping the current table")
			}
		})
	} else {
		return nil, fmt.Errorf("initialize region data: %w", err)
	}

	if ip2l, err := configureIP2Location(c); err == nil {
		if ip2l != nil {
			s.closer = append(s.closer, ip2l)
			s.reload = append(s.reload, func() {
				if err := ip2l.Load(""); err != nil {
					s.Logger.Err(err).Msg("failed to reload ip2location database")
				}
			})
			s.API.LookupIP = ip2l.LookupFields
		}
	} else {
		return nil, fmt.Errorf("initialize ip2location: %w", err)
	}

	s.Handler = m.Then(s.API)

	if cfg, err := configureServerTLS(c); err == nil {
		s.TLSConfig = cfg
	} else {
		return nil, fmt.Errorf("initialize server tls: %w", err)
	}

	success = true
	return &s, nil
}

// stripPort removes a trailing numeric port from a Host header value.
func stripPort(host string) string {
	for i := len(host) - 1; i >= 0; i-- {
		if xc := host[i]; xc < '0' || xc > '9' {
			if xc == ':' {
				return host[:i]
			}
			break
		}
	}
	return host
}

func configureServerTLS(c *Config) (*tls.Config, error) {
	var t tls.Config
	if len(c.ServerCerts) != 0 {
		for _, fn := range c.ServerCerts {
			cert, err := tls.LoadX509KeyPair(fn+".crt", fn+".key")
			if err != nil {
				return nil, fmt.Errorf("load server certificate %q: %w", fn, err)
			}
			t.Certificates = append(t.Certificates, cert)
		}
	} else if len(c.AddrTLS) != 0 {
		return nil, fmt.Errorf("no tls certificates provided")
	}
	return &t, nil
}

func configureLogging(c *Config) (zerolog.Logger, func(), error) {
	var ws []io.Writer
	if c.LogStdout {
		var w io.Writer = os.Stdout
		if c.LogStdoutPretty {
			w = zerolog.ConsoleWriter{Out: os.Stdout}
		}
		ws = append(ws, newZerologWriterLevel(w, c.LogStdoutLevel))
	}

	var reopen func()
	if c.LogFile != "" {
		fn, err := filepath.Abs(c.LogFile)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("resolve log file: %w", err)
		}
		fw := newZerologWriterLevel(nil, c.LogFileLevel)
		reopen = func() {
			fw.SwapWriter(func(old io.Writer) io.Writer {
				return reopenLogFile(old, fn)
			})
		}
		reopen()
		ws = append(ws, fw)
	}

	l := zerolog.New(zerolog.MultiLevelWriter(ws...)).
		Level(c.LogLevel).
		With().
		Timestamp().
		Logger()
	return l, reopen, nil
}

// reopenLogFile closes old (if it's open) and opens fn for appending. On error,
// it returns nil so log file output is discarded until the next reopen.
func reopenLogFile(old io.Writer, fn string) io.Writer {
	if c, ok := old.(io.Closer); ok {
		c.Close()
	}
	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open log file: %v\n", err)
		return nil
	}
	return f
}

// configureRegionData returns a function which loads the region table from
// the configured source and builds a resolver for it. Any opened databases are
// added to the server's closers.
func configureRegionData(c *Config, s *Server) (func(context.Context) (*usregion.Resolver, error), error) {
	aliases, err := usregion.ParseAliases(c.RegionAliases...)
	if err != nil {
		return nil, fmt.Errorf("aliases: %w", err)
	}

	var load func(context.Context) (*usregion.Table, error)
	switch typ, arg, _ := strings.Cut(c.RegionData, ":"); typ {
	case "", "builtin":
		if arg != "" {
			return nil, fmt.Errorf("builtin: invalid argument %q", arg)
		}
		load = func(context.Context) (*usregion.Table, error) {
			return usregion.Builtin(), nil
		}
	case "sqlite3":
		p, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("sqlite3: resolve %q: %w", arg, err)
		}
		db, err := regiondb.Open(p)
		if err != nil {
			return nil, fmt.Errorf("sqlite3: %w", err)
		}
		s.closer = append(s.closer, db)
		if err := db.Init(context.Background()); err != nil {
			return nil, fmt.Errorf("sqlite3: %w", err)
		}
		load = db.Load
	default:
		return nil, fmt.Errorf("unknown type %q", typ)
	}

	return func(ctx context.Context) (*usregion.Resolver, error) {
		t, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if len(aliases) != 0 {
			if t, err = t.WithAliases(aliases); err != nil {
				return nil, err
			}
		}
		return usregion.NewResolver(t), nil
	}, nil
}

func configureIP2Location(c *Config) (*ip2xMgr, error) {
	if c.IP2Location == "" {
		return nil, nil
	}
	mgr := new(ip2xMgr)
	return mgr, mgr.Load(c.IP2Location)
}

// Run runs the server until ctx is canceled, then shuts it down, waiting up to
// shutdownTimeout for active requests to finish. It must only ever be called
// once, and the server is useless afterwards.
func (s *Server) Run(ctx context.Context) error {
	if s.closed {
		return http.ErrServerClosed
	}

	hs, as := s.httpServers()
	if len(hs) == 0 {
		return fmt.Errorf("no listen addresses provided")
	}
	s.Logger.Log().Msgf("starting server on %s", strings.Join(as, ", "))

	errch := make(chan error, len(hs))
	for _, h := range hs {
		go func(h *http.Server) {
			if h.TLSConfig != nil {
				errch <- h.ListenAndServeTLS("", "")
			} else {
				errch <- h.ListenAndServe()
			}
		}(h)
	}

	ready := time.NewTimer(time.Second * 2)
	defer ready.Stop()

	for {
		select {
		case <-ready.C:
			go s.sdnotify("READY=1")
		case err := <-errch:
			s.Logger.Err(err).Msg("failed to start server")
			return err
		case <-ctx.Done():
			s.closed = true
			s.Logger.Log().Msg("shutting down")
			go s.sdnotify("STOPPING=1")

			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			var wg sync.WaitGroup
			for _, h := range hs {
				wg.Add(1)
				go func(h *http.Server) {
					defer wg.Done()
					if err := h.Shutdown(sctx); err != nil {
						s.Logger.Warn().Err(err).Str("addr", h.Addr).Msg("failed to shut down gracefully")
					}
				}(h)
			}
			wg.Wait()

			s.close()
			return nil
		}
	}
}

const shutdownTimeout = time.Second * 10

// httpServers creates a server for each listen address, returning them along
// with their URLs.
func (s *Server) httpServers() (hs []*http.Server, as []string) {
	for _, a := range s.Addr {
		hs = append(hs, &http.Server{Addr: a, Handler: s.Handler})
		as = append(as, "http://"+a)
	}
	for _, a := range s.AddrTLS {
		hs = append(hs, &http.Server{Addr: a, Handler: s.Handler, TLSConfig: s.TLSConfig})
		as = append(as, "https://"+a)
	}
	return hs, as
}

func (s *Server) close() {
	for _, c := range s.closer {
		if err := c.Close(); err != nil {
			s.Logger.Warn().Err(err).Msg("failed to close resource")
		}
	}
	s.closer = nil
}

func (s *Server) HandleSIGHUP() {
	if s.closed {
		return
	}

	s.sdnotify("RELOADING=1")
	defer s.sdnotify("READY=1")

	for _, fn := range s.reload {
		if fn != nil {
			fn()
		}
	}
}

// serveRest handles endpoints not handled by the API.
func (s *Server) serveRest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "private, no-cache, no-store")
	w.Header().Set("Expires", "0")
	w.Header().Set("Pragma", "no-cache")

	switch r.URL.Path {
	case "/metrics":
		var ms []func(io.Writer)
		if x := s.MetricsSecret; x != "" && r.URL.Query().Get("secret") == x {
			ms = append(ms, metrics.WriteProcessMetrics)
		}
		ms = append(ms, s.API.WritePrometheus)

		var b bytes.Buffer
		for i, m := range ms {
			if i != 0 {
				b.WriteByte('\n')
			}
			m(&b)
		}

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.Header().Set("Content-Length", strconv.Itoa(b.Len()))
		w.WriteHeader(http.StatusOK)
		b.WriteTo(w)

	case "/":
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "Go away.\n")

	default:
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}

// sdnotify sends state to the systemd notification socket, if there is one.
func (s *Server) sdnotify(state string) error {
	if s.NotifySocket == "" {
		return nil
	}
	conn, err := net.Dial("unixgram", s.NotifySocket)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(state))
	return err
}
