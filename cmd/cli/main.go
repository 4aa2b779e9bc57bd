// Command apptbook is a terminal client for the appointment scheduling service.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"apptbook/internal/api"
	"apptbook/internal/config"
	"apptbook/internal/errs"
	"apptbook/internal/nav"
	"apptbook/internal/notify"
	"apptbook/internal/service"
	"apptbook/internal/session"
	"apptbook/internal/view"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	app := &cli.App{
		Name:    "apptbook",
		Usage:   "Book and list appointments from the terminal.",
		Version: fmt.Sprintf("%s (%s)", version, buildDate),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: cfg.Addr, Usage: "backend base URL"},
		},
		Commands: []*cli.Command{
			loginCommand(cfg, logger),
			logoutCommand(cfg, logger),
			statusCommand(cfg, logger),
			usersCommand(cfg, logger),
			appointmentsCommand(cfg, logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// deps bundles one command invocation's wiring.
type deps struct {
	session  *session.Store
	client   *api.Client
	gate     *nav.Gate
	notifier notify.Notifier
	log      *zap.Logger
}

func wire(c *cli.Context, cfg config.Config, log *zap.Logger) *deps {
	sess := session.New(cfg.ConfigDir)
	return &deps{
		session:  sess,
		client:   api.New(c.String("addr"), cfg.Timeout, sess, log),
		gate:     nav.NewGate(sess),
		notifier: notify.Writer{Out: os.Stdout},
		log:      log,
	}
}

// requireSession gates protected commands. A denied check surfaces as a
// login redirect, never as an inline error.
func (d *deps) requireSession() error {
	if decision := d.gate.Authorize(nav.RouteAppointments); !decision.Allow {
		return cli.Exit(fmt.Sprintf("login required: run `apptbook login` (%s)", decision.RedirectTo), 1)
	}
	return nil
}

// asExit converts store/transport failures to exit codes. Auth rejections
// redirect to login; everything else was already surfaced as a notification.
func (d *deps) asExit(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrUnauthorized) {
		return cli.Exit("session rejected: run `apptbook login` ("+string(nav.RouteLogin)+")", 1)
	}
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		return cli.Exit(ve.Error(), 2)
	}
	return cli.Exit("", 1)
}

func loginCommand(cfg config.Config, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Authenticate with a username and store the session token.",
		ArgsUsage: "[username]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "username to log in as"},
		},
		Action: func(c *cli.Context) error {
			d := wire(c, cfg, log)

			username := c.String("username")
			if username == "" {
				username = c.Args().First()
			}
			if username == "" {
				fmt.Print("Username: ")
				r := bufio.NewReader(os.Stdin)
				line, _ := r.ReadString('\n')
				username = strings.TrimSpace(line)
			}

			navigator := nav.NavigatorFunc(func(route nav.Route) {
				d.log.Info("navigate", zap.String("route", string(route)))
			})
			flow := service.NewLoginFlow(d.client, d.session, d.notifier, navigator, d.log)
			return d.asExit(flow.Submit(c.Context, username))
		},
	}
}

func logoutCommand(cfg config.Config, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Discard the stored session token.",
		Action: func(c *cli.Context) error {
			d := wire(c, cfg, log)
			if err := d.session.Clear(); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func statusCommand(cfg config.Config, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show whether a session is active.",
		Action: func(c *cli.Context) error {
			d := wire(c, cfg, log)
			if d.session.Token() == "" {
				fmt.Println("no active session")
				return nil
			}
			fmt.Printf("session active, expires %s\n", d.session.ExpiresAt().Format(time.RFC3339))
			return nil
		},
	}
}

func usersCommand(cfg config.Config, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "List invitable users.",
		Action: func(c *cli.Context) error {
			d := wire(c, cfg, log)
			if err := d.requireSession(); err != nil {
				return err
			}
			dir := service.NewUserDirectory(d.client, d.notifier, d.log)
			if err := dir.Load(c.Context); err != nil {
				return d.asExit(err)
			}
			for _, o := range dir.Options() {
				fmt.Printf("%s\t%s\n", o.Value, o.Label)
			}
			return nil
		},
	}
}

func appointmentsCommand(cfg config.Config, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:    "appointments",
		Aliases: []string{"appt"},
		Usage:   "View and create appointments.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show all appointments.",
				Action: func(c *cli.Context) error {
					d := wire(c, cfg, log)
					if err := d.requireSession(); err != nil {
						return err
					}
					store := service.NewAppointmentStore(d.client, d.notifier, d.log)
					dir := service.NewUserDirectory(d.client, d.notifier, d.log)
					v := view.New(store, dir, os.Stdout, d.log)
					return d.asExit(v.Mount(c.Context))
				},
			},
			{
				Name:  "create",
				Usage: "Create an appointment and invite users.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true, Usage: "appointment title"},
					&cli.StringFlag{Name: "start", Required: true, Usage: `start time, "2006-01-02 15:04" local`},
					&cli.StringFlag{Name: "end", Required: true, Usage: `end time, "2006-01-02 15:04" local`},
					&cli.StringSliceFlag{Name: "invite", Usage: "user to invite (id or username), repeatable"},
				},
				Action: func(c *cli.Context) error {
					d := wire(c, cfg, log)
					if err := d.requireSession(); err != nil {
						return err
					}
					store := service.NewAppointmentStore(d.client, d.notifier, d.log)
					dir := service.NewUserDirectory(d.client, d.notifier, d.log)
					v := view.New(store, dir, os.Stdout, d.log)
					if err := v.Mount(c.Context); err != nil {
						return d.asExit(err)
					}
					form := view.CreateForm{
						Title:   c.String("title"),
						Start:   c.String("start"),
						End:     c.String("end"),
						Invited: c.StringSlice("invite"),
					}
					return d.asExit(v.SubmitCreate(c.Context, &form))
				},
			},
		},
	}
}

func buildLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
