package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/briangreenhill/mapty/internal/config"
	"github.com/briangreenhill/mapty/internal/logger"
	"github.com/briangreenhill/mapty/internal/mapview"
	"github.com/briangreenhill/mapty/internal/metrics"
	"github.com/briangreenhill/mapty/internal/render"
	"github.com/briangreenhill/mapty/internal/storage"
	"github.com/briangreenhill/mapty/internal/tracker"
	"github.com/briangreenhill/mapty/internal/workout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type CLI struct {
	writer     io.Writer
	logWriter  io.Writer
	logger     *slog.Logger
	configPath string

	cfg      config.Config
	backend  storage.Backend
	registry *prometheus.Registry
	metrics  *metrics.Collector
}

func NewCLI(w, logWriter io.Writer, logger *slog.Logger) *CLI {
	return &CLI{
		writer:    w,
		logWriter: logWriter,
		logger:    logger,
	}
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	root := c.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func (c *CLI) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "mapty",
		Short:             "Track running and cycling workouts on a map",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(c.writer)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		c.addCommand(),
		c.importCommand(),
		c.listCommand(),
		c.showCommand(),
		c.serveCommand(),
	)
	return root
}

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger.Setup(c.logWriter, cfg.Log.Format, cfg.Log.Level)

	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, c.logger)
	if err != nil {
		return err
	}
	c.backend = backend

	c.registry = prometheus.NewRegistry()
	c.metrics = metrics.NewCollector(c.registry)
	return nil
}

func (c *CLI) close() error {
	if c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend = nil
	return err
}

func (c *CLI) newService() (*Service, error) {
	codec, err := workout.NewCodec(c.cfg.Storage.Codec)
	if err != nil {
		return nil, err
	}
	ids, err := workout.NewIDGenerator(c.cfg.IDs.Scheme)
	if err != nil {
		return nil, err
	}

	var locator tracker.Geolocator = tracker.NoLocator{}
	if c.cfg.Map.Locate == "home" {
		locator = tracker.StaticLocator{At: workout.Coords{Lat: c.cfg.Map.Home.Lat, Lng: c.cfg.Map.Home.Lng}}
	}

	return NewService(storage.Limit(c.backend, c.cfg.Storage.QuotaBytes), c.logger, Options{
		Key:   c.cfg.Storage.Key,
		Codec: codec,
		IDs:   ids,
		Zoom:  c.cfg.Map.Zoom,
		Tiles: mapview.TileLayer{
			URL:        c.cfg.Map.Tiles.URL,
			Subdomains: c.cfg.Map.Tiles.Subdomains,
			MaxZoom:    c.cfg.Map.Tiles.MaxZoom,
		},
		Locator: locator,
		Metrics: c.metrics,
	}), nil
}

func (c *CLI) printNotices(notices []tracker.Notice) {
	n := tracker.WriterNotifier{W: c.writer}
	for _, notice := range notices {
		n.Notify(notice)
	}
}

func (c *CLI) addCommand() *cobra.Command {
	var req AddRequest
	var distance, duration, cadence, elevation string

	cmd := &cobra.Command{
		Use:       "add running|cycling",
		Short:     "Add a workout at a map position",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"running", "cycling"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Type = args[0]
			req.Distance = FormNumber(distance)
			req.Duration = FormNumber(duration)
			req.Cadence = FormNumber(cadence)
			req.ElevationGain = FormNumber(elevation)
			return c.addWorkout(cmd.Context(), req)
		},
	}
	cmd.Flags().Float64Var(&req.Lat, "lat", 0, "latitude of the workout")
	cmd.Flags().Float64Var(&req.Lng, "lng", 0, "longitude of the workout")
	cmd.Flags().StringVar(&distance, "distance", "", "distance in km")
	cmd.Flags().StringVar(&duration, "duration", "", "duration in minutes")
	cmd.Flags().StringVar(&cadence, "cadence", "", "cadence in steps/min (running)")
	cmd.Flags().StringVar(&elevation, "elevation", "", "elevation gain in meters (cycling)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func (c *CLI) addWorkout(ctx context.Context, req AddRequest) error {
	svc, err := c.newService()
	if err != nil {
		return err
	}
	c.printNotices(svc.Start(ctx))
	svc.EchoList(c.writer)
	svc.EchoMap(c.writer)

	res, err := svc.Add(ctx, req)
	c.printNotices(res.Notices)
	if err != nil {
		return err
	}
	if !res.Saved {
		return fmt.Errorf("workout %s was not saved", res.Workout.ID())
	}

	fmt.Fprintf(c.writer, "Workout %s added\n", res.Workout.ID())
	return nil
}

func (c *CLI) importCommand() *cobra.Command {
	var gpxFile, kind, cadence, elevation string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add a workout from a GPX recording",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.logger.Info("Importing gpx", slog.String("gpx_file", gpxFile))

			gpxBytes, err := readGPXFile(gpxFile)
			if err != nil {
				return err
			}
			track, err := ParseGPX(gpxBytes)
			if err != nil {
				return err
			}

			req := AddRequest{
				Type:          kind,
				Lat:           track.Start.Lat,
				Lng:           track.Start.Lng,
				Distance:      formNumber(track.Distance),
				Duration:      formNumber(track.Duration),
				Cadence:       FormNumber(cadence),
				ElevationGain: FormNumber(elevation),
			}
			if !cmd.Flags().Changed("elevation") {
				req.ElevationGain = formNumber(track.Uphill)
			}
			return c.addWorkout(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&gpxFile, "gpx", "", "path to gpx file")
	cmd.Flags().StringVar(&kind, "type", "running", "running or cycling")
	cmd.Flags().StringVar(&cadence, "cadence", "", "cadence in steps/min (running)")
	cmd.Flags().StringVar(&elevation, "elevation", "", "elevation gain in meters, defaults to the recorded climb (cycling)")
	_ = cmd.MarkFlagRequired("gpx")
	return cmd
}

func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.newService()
			if err != nil {
				return err
			}
			svc.EchoList(c.writer)
			c.printNotices(svc.Start(cmd.Context()))

			if len(svc.List()) == 0 {
				fmt.Fprintln(c.writer, "No workouts yet")
			}
			return nil
		},
	}
}

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Center the map on a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.newService()
			if err != nil {
				return err
			}
			c.printNotices(svc.Start(cmd.Context()))
			svc.EchoMap(c.writer)

			w, err := svc.Select(args[0])
			if errors.Is(err, tracker.ErrNotFound) {
				return err
			}
			fmt.Fprintln(c.writer, render.Entry(w))
			return err
		},
	}
}

func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the workout API and map page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.RunAPI(cmd.Context())
		},
	}
}

func (c *CLI) RunAPI(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	svc, err := c.newService()
	if err != nil {
		return err
	}
	for _, n := range svc.Start(ctx) {
		c.logger.Warn("Startup notice", slog.String("level", string(n.Level)), slog.String("message", n.Message))
	}

	server := &http.Server{
		Addr:    c.cfg.Server.Addr,
		Handler: NewAPI(c.logger, svc, c.registry, c.cfg.Server.UIDir),
	}

	go func() {
		<-ctx.Done()
		c.logger.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("Error shutting down server", slog.Any("error", err))
		}
	}()

	c.logger.Info("Starting server", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		c.logger.Error("Error starting server", slog.Any("error", err))
		cancel()
		return err
	}

	return nil
}
