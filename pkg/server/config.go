// Package server runs the usregion HTTP server.
package server

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Config contains the configuration for the server. The env struct tag
// contains the environment variable name and the default value if missing, or
// empty (if not ?=). All string arrays are comma-separated.
type Config struct {
	// The addresses to listen on (comma-separated).
	Addr []string `env:"USREGION_ADDR?=:8080"`

	// The addresses to listen on with TLS (comma-separated).
	AddrTLS []string `env:"USREGION_ADDR_HTTPS"`

	// Comma-separated list of case-insensitive hostnames to accept via the Host
	// header. If not provided, all hostnames are allowed.
	Host []string `env:"USREGION_HOST"`

	// Comma-separated list of paths to SSL server certificates to use for SSL.
	// The .crt and .key extensions will be appended automatically. If a path
	// begins with @, it is the name of a systemd credential.
	ServerCerts []string `env:"USREGION_SERVER_CERTS" cred:"path"`

	// The minimum log level (e.g., trace, debug, info, warn, error, fatal).
	LogLevel zerolog.Level `env:"USREGION_LOG_LEVEL=debug"`

	// Whether to log to stdout.
	LogStdout bool `env:"USREGION_LOG_STDOUT=true"`

	// Whether to use pretty logs.
	LogStdoutPretty bool `env:"USREGION_LOG_STDOUT_PRETTY=true"`

	// The minimum log level for stdout.
	LogStdoutLevel zerolog.Level `env:"USREGION_LOG_STDOUT_LEVEL=trace"`

	// The log file to output to, if provided. Reopened on SIGHUP.
	LogFile string `env:"USREGION_LOG_FILE"`

	// The minimum log level for the log file.
	LogFileLevel zerolog.Level `env:"USREGION_LOG_FILE_LEVEL=info"`

	// The source of the region table. Reloaded on SIGHUP.
	//  - builtin
	//  - sqlite3:/path/to/regions.db
	RegionData string `env:"USREGION_REGION_DATA=builtin"`

	// Extra aliases to add to the region table. Comma-separated list of
	// CODE=alias (example: DC=The District,CA=Cali).
	RegionAliases []string `env:"USREGION_REGION_ALIASES"`

	// Secret token for accessing internal metrics. If it begins with @, it is
	// the name of a systemd credential to read it from.
	MetricsSecret string `env:"USREGION_METRICS_SECRET" cred:"secret"`

	// The path to the IP2Location database, which should contain at least the
	// country and region fields. It can be replaced while the server is running
	// (reloaded on SIGHUP). If not provided, /v1/locate is unavailable.
	IP2Location string `env:"USREGION_IP2LOCATION"`

	// For sd-notify.
	NotifySocket string `env:"NOTIFY_SOCKET"`
}

// UnmarshalEnv unmarshals an array of environment variables into c, setting
// default values as appropriate. If incremental is true, default values will
// not be set for missing env vars, but only for empty ones.
func (c *Config) UnmarshalEnv(es []string, incremental bool) error {
	em := map[string]string{}
	for _, e := range es {
		if k, v, ok := strings.Cut(e, "="); ok && (strings.HasPrefix(k, "USREGION_") || k == "NOTIFY_SOCKET") {
			em[k] = v
		}
	}

	cv := reflect.ValueOf(c).Elem()
	for _, f := range reflect.VisibleFields(cv.Type()) {
		tag, ok := f.Tag.Lookup("env")
		if !ok {
			continue
		}
		key, def, _ := strings.Cut(tag, "=")
		key, emptiable := strings.CutSuffix(key, "?")

		val, set := em[key]
		delete(em, key)
		switch {
		case set && (val != "" || emptiable):
		case set || !incremental:
			val = def
		default:
			continue
		}

		val, err := expandCred(val, f.Tag.Get("cred"))
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		if err := setEnvField(cv.FieldByIndex(f.Index), val); err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
	}
	for key, val := range em {
		if val != "" {
			return fmt.Errorf("unknown environment variable %q", key)
		}
	}
	return nil
}

func setEnvField(v reflect.Value, s string) error {
	switch p := v.Addr().Interface().(type) {
	case *string:
		*p = s
	case *bool:
		if s == "" {
			*p = false
		} else if b, err := strconv.ParseBool(s); err == nil {
			*p = b
		} else {
			return fmt.Errorf("parse bool %q: %w", s, err)
		}
	case *[]string:
		if s == "" {
			*p = []string{}
		} else {
			*p = strings.Split(s, ",")
		}
	case *zerolog.Level:
		l, err := zerolog.ParseLevel(s)
		if err != nil {
			return fmt.Errorf("parse level %q: %w", s, err)
		}
		*p = l
	default:
		return fmt.Errorf("unhandled type %s", v.Type())
	}
	return nil
}

// expandCred replaces systemd credential references (values starting with @)
// in v. If mode is "path", each comma-separated item is replaced with the path
// to the credential. If mode is "secret", v is replaced with the credential's
// contents, without surrounding whitespace.
func expandCred(v, mode string) (string, error) {
	switch mode {
	case "":
		return v, nil
	case "path":
		vs := strings.Split(v, ",")
		for i, x := range vs {
			if name, ok := strings.CutPrefix(x, "@"); ok {
				p, err := credPath(name)
				if err != nil {
					return "", err
				}
				vs[i] = p
			}
		}
		return strings.Join(vs, ","), nil
	case "secret":
		name, ok := strings.CutPrefix(v, "@")
		if !ok {
			return v, nil
		}
		p, err := credPath(name)
		if err != nil {
			return "", err
		}
		buf, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read credential %q: %w", name, err)
		}
		return string(bytes.TrimSpace(buf)), nil
	}
	return "", fmt.Errorf("invalid credential mode %q", mode)
}

func credPath(name string) (string, error) {
	dir := os.Getenv("CREDENTIALS_DIRECTORY")
	if !filepath.IsAbs(dir) {
		return "", fmt.Errorf("credential %q: CREDENTIALS_DIRECTORY=%q is not an absolute path", name, dir)
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid credential name %q", name)
	}
	return filepath.Join(dir, name), nil
}
