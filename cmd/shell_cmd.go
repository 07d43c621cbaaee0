package cmd

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scriptPath string // Command script; stdin when empty

// shellCmd reads line commands and applies them to a fresh kernel
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run the command shell on stdin or a script",
	Run: func(cmd *cobra.Command, args []string) {
		k, err := newKernel(cmd)
		if err != nil {
			logrus.Fatalf("Invalid kernel configuration: %v", err)
		}

		tel, err := newTelemetry(otelTrace)
		if err != nil {
			logrus.Fatalf("Unable to open span export %s: %v", otelTrace, err)
		}
		ctx := context.Background()
		defer func() {
			if err := tel.shutdown(ctx); err != nil {
				logrus.Errorf("flushing spans: %v", err)
			}
		}()

		var in io.Reader = cmd.InOrStdin()
		if scriptPath != "" {
			f, err := os.Open(scriptPath)
			if err != nil {
				logrus.Fatalf("Unable to open script: %v", err)
			}
			defer f.Close()
			in = f
		}

		out := cmd.OutOrStdout()
		if err := NewShell(k, out, tel).Run(ctx, in); err != nil {
			logrus.Errorf("reading commands: %v", err)
		}
		renderTraceSummary(out, k.Trace)
		logrus.Info("Shell session complete.")
	},
}

func init() {
	shellCmd.Flags().StringVar(&scriptPath, "script", "", "Read commands from this file instead of stdin")
}
