package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/config"
	"github.com/reoring/immjson/dashboard"
	"github.com/reoring/immjson/forecast"
	"github.com/reoring/immjson/sensor"
	"github.com/reoring/immjson/source"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "decode":
		decodeCmd(os.Args[2:])
	case "fetch":
		fetchCmd(os.Args[2:])
	case "view":
		viewCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "dashboard CLI\n\nUsage:\n  dashboard decode [-config f.yaml] [-chunk N] [file]\n  dashboard fetch  [-config f.yaml] [-raw]\n  dashboard view   [-config f.yaml] [-forecast file] [-samples file]\n\nNotes:\n  - decode reads stdin when no file is given.\n  - fetch -raw speaks HTTP/1.0 over a bare TLS connection.")
}

// common holds the flags every subcommand takes.
type common struct {
	configPath string
	verbose    bool
	cfg        config.Config
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
}

// setup loads the configuration and installs the logger in every package
// that logs.
func (c *common) setup() *zap.Logger {
	c.cfg = config.Default()
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			fatalf("config: %v", err)
		}
		c.cfg = cfg
	}
	l, err := c.cfg.Log.Logger(c.verbose)
	if err != nil {
		fatalf("logger: %v", err)
	}
	immjson.SetLogger(l)
	forecast.SetLogger(l.Named("forecast"))
	sensor.SetLogger(l.Named("sensor"))
	return l
}

func (c *common) client() *forecast.Client {
	return &forecast.Client{
		HTTP:      &http.Client{Timeout: c.cfg.Forecast.Timeout},
		ChunkSize: c.cfg.Forecast.ChunkSize,
		Opt:       c.cfg.Decode.ParseOpt(),
	}
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var c common
	c.register(fs)
	chunk := fs.Int("chunk", 0, "read size; the configured chunk_size when 0")
	_ = fs.Parse(args)
	l := c.setup()
	defer func() { _ = l.Sync() }()

	size := c.cfg.Forecast.ChunkSize
	if *chunk > 0 {
		size = *chunk
	}
	in, closeIn := openInput(fs.Arg(0))
	defer closeIn()

	var f forecast.Forecast
	if err := forecast.Decode(context.Background(), source.Reader(in, size), &f, c.cfg.Decode.ParseOpt()); err != nil {
		reportFatal(err)
	}
	writeJSON(&f)
}

func fetchCmd(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var c common
	c.register(fs)
	raw := fs.Bool("raw", false, "HTTP/1.0 over a bare TLS connection")
	_ = fs.Parse(args)
	l := c.setup()
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := c.cfg.Forecast.WithTimeout(ctx)
	defer cancel()

	var f forecast.Forecast
	var err error
	if *raw {
		err = fetchRaw(ctx, c.client(), c.cfg.Forecast.Request(), &f)
	} else {
		err = c.client().Fetch(ctx, c.cfg.Forecast.Request(), &f)
	}
	if err != nil {
		reportFatal(err)
	}
	writeJSON(&f)
}

func fetchRaw(ctx context.Context, cl *forecast.Client, req forecast.Request, f *forecast.Forecast) error {
	u, err := req.URL()
	if err != nil {
		return err
	}
	pu, err := url.Parse(u)
	if err != nil {
		return err
	}
	port := pu.Port()
	if port == "" {
		port = "443"
	}
	d := tls.Dialer{Config: &tls.Config{ServerName: pu.Hostname(), MinVersion: tls.VersionTLS12}}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(pu.Hostname(), port))
	if err != nil {
		return err
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	return cl.FetchRaw(ctx, conn, req, f)
}

func viewCmd(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	var c common
	c.register(fs)
	fcPath := fs.String("forecast", "", "forecast document; fetched when empty")
	samplesPath := fs.String("samples", "", "sample log")
	at := fs.String("at", "", "RFC 3339 time to render for; now when empty")
	_ = fs.Parse(args)
	l := c.setup()
	defer func() { _ = l.Sync() }()

	ctx := context.Background()
	in := dashboard.Input{Now: time.Now()}
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			fatalf("-at: %v", err)
		}
		in.Now = t
	}

	var f forecast.Forecast
	if *fcPath != "" {
		r, closeIn := openInput(*fcPath)
		in.FetchErr = forecast.Decode(ctx, source.Reader(r, c.cfg.Forecast.ChunkSize), &f, c.cfg.Decode.ParseOpt())
		closeIn()
	} else {
		fctx, cancel := c.cfg.Forecast.WithTimeout(ctx)
		in.FetchErr = c.client().Fetch(fctx, c.cfg.Forecast.Request(), &f)
		cancel()
	}
	in.Forecast = &f

	store, err := sensor.NewStore(c.cfg.Sensor.Capacity)
	if err != nil {
		fatalf("sensor: %v", err)
	}
	if *samplesPath != "" {
		r, closeIn := openInput(*samplesPath)
		if _, err := store.LoadLog(ctx, source.Reader(r, c.cfg.Forecast.ChunkSize), c.cfg.Decode.ParseOpt()); err != nil {
			l.Warn("sample log rejected", zap.Error(err))
		}
		closeIn()
	}
	in.Samples = store
	writeJSON(dashboard.Build(in))
}

func openInput(path string) (io.Reader, func()) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}
	}
	f, err := os.Open(path)
	if err != nil {
		fatalf("open: %v", err)
	}
	return f, func() { _ = f.Close() }
}

func writeJSON(v any) {
	enc := gojson.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encode: %v", err)
	}
}

// reportFatal prints every issue with its position before exiting.
func reportFatal(err error) {
	if iss, ok := immjson.AsIssues(err); ok {
		for _, it := range iss {
			fmt.Fprintf(os.Stderr, "%d:%d %s %s: %s\n", it.Line, it.Column, it.Path, it.Code, it.Message)
			if it.InputFragment != "" {
				fmt.Fprintf(os.Stderr, "    near %q\n", it.InputFragment)
			}
		}
		os.Exit(1)
	}
	fatalf("%v", err)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
