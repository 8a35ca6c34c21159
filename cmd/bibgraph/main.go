package main

import (
	"bibgraph-backend/config"
	"bibgraph-backend/logging"
	"github.com/spf13/cobra"
	"os"
)

var (
	InputFile string
	Desc      string
	Email     string
	DryRun    bool
	Verbose   bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Activate debug log output on console")
	rootCmd.PersistentFlags().BoolVar(&DryRun, "dry-run", false, "Load into an in-process graph instead of neo4j")

	runCmd.Flags().StringVarP(&InputFile, "input", "i", "", "Path to the bibliographic CSV file")
	runCmd.Flags().StringVarP(&Desc, "desc", "d", "", "Description of the run, defaults to the input file name")
	runCmd.Flags().StringVarP(&Email, "email", "e", "", "Send the run report to this address")
	_ = runCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var conf *config.Config

var rootCmd = &cobra.Command{
	Use:           "bibgraph",
	Short:         "Build a bibliographic graph and its derived metrics",
	Long:          "bibgraph turns flat bibliographic CSV rows into a paper/author/venue graph in neo4j and computes citation rankings, H-index and impact factors over it.",
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		conf = c

		logging.SetDefaultConfig(loggingConf())
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once over an input CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOnce(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and consume queued jobs",
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}
