package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rvstub/gdbstub/internal/dispatcher"
	"github.com/rvstub/gdbstub/internal/logflags"
	"github.com/rvstub/gdbstub/internal/rsp"
	"github.com/rvstub/gdbstub/internal/simtarget"
	"github.com/rvstub/gdbstub/internal/stubconfig"
	"github.com/rvstub/gdbstub/internal/traceflags"
	"github.com/rvstub/gdbstub/version"
)

var (
	listenAddr  string
	logEnabled  bool
	logFlagsStr string
	traceConfig string
	exitOnKill  bool
	runTimeoutS int
	stderrDiag  = colorable.NewColorableStderr()
)

func main() {
	rootCommand := &cobra.Command{
		Use:   "rvstub",
		Short: "rvstub serves the GDB remote serial protocol against a simulated RISC-V target.",
		RunE:  runServe,
	}
	rootCommand.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (default from config, or localhost:2331)")
	rootCommand.Flags().BoolVar(&logEnabled, "log", false, "enable debugging server logging")
	rootCommand.Flags().StringVar(&logFlagsStr, "log-output", "", "comma separated list of log gates to enable: wire, dispatcher, monitor, syscall, all")
	rootCommand.Flags().StringVar(&traceConfig, "trace-config", "", "path to a YAML file of initial monitor trace flags")
	rootCommand.Flags().BoolVar(&exitOnKill, "exit-on-kill", true, "terminate the server when the client sends a kill packet")
	rootCommand.Flags().IntVar(&runTimeoutS, "run-timeout", 0, "maximum seconds a single continue may run (0 = unlimited)")

	rootCommand.AddCommand(versionCommand())

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(stderrDiag, err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the stub server's version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.StubVersion.String())
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := stubconfig.LoadConfig()

	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}
	if cmd.Flags().Changed("run-timeout") {
		cfg.RunTimeoutSeconds = runTimeoutS
	}

	if err := logflags.Setup(logEnabled, logFlagsStr, os.Stderr); err != nil {
		return err
	}

	flags := traceflags.New(cfg.TraceFlags)
	if traceConfig != "" {
		initial, err := traceflags.LoadFile(traceConfig)
		if err != nil {
			return fmt.Errorf("loading trace config: %w", err)
		}
		for name, value := range initial {
			flags.Register(name, value)
			flags.Set(name, value)
		}
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("starting listener: %w", err)
	}
	defer listener.Close()

	logrus.WithField("addr", listener.Addr().String()).Info("rvstub listening")

	killMode := dispatcher.ExitOnKill
	if !exitOnKill {
		killMode = dispatcher.ResetOnKill
	}

	d := dispatcher.New(dispatcher.Config{
		Conn:       rsp.New(listener),
		Target:     simtarget.New(),
		KillMode:   killMode,
		RunTimeout: time.Duration(cfg.RunTimeoutSeconds) * time.Second,
		Flags:      flags,
		Stdout:     os.Stdout,
	})

	return d.Serve()
}
