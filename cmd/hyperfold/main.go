package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/plan-systems/klog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	sequence    string
	strategy    string
	workers     int
	metricsAddr string

	metricsSrv *http.Server

	rootCmd = &cobra.Command{
		Use:   "hyperfold",
		Short: "Folds an RNA sequence across temperatures and compares the resulting hypergraphs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if metricsAddr != "" {
				serveMetrics(metricsAddr)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if metricsSrv != nil {
				metricsSrv.Shutdown(context.Background())
			}
		},
		SilenceUsage: true,
	}
)

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv = &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Warningf("metrics server: %v", err)
		}
	}()
	klog.Infof("serving metrics on %s/metrics", addr)
}

func init() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
	rootCmd.PersistentFlags().AddGoFlagSet(fset)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "yaml workspace config")
	flags.StringVarP(&sequence, "seq", "s", "", "RNA sequence (overrides config)")
	flags.StringVar(&strategy, "store", "", "store strategy: pointwise, memory or search (overrides config)")
	flags.IntVarP(&workers, "workers", "w", -1, "concurrent folds; 0 denotes one per CPU (overrides config)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	rootCmd.AddCommand(sweepCmd, diffCmd, analyzeCmd, runCmd)
}

func main() {
	err := rootCmd.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
