package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default is :8000)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(logToStdout)

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the career-advisor api", zap.String("version", version))

	advisor, err := newAdvisor(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the language model client", zap.Error(err))
	}

	routerCfg := server.RouterConfig{
		AllowedOrigins: config.Server.AllowedOrigins,
		Analyzer:       advisor,
		Logger:         log,
	}

	if config.Speech.Enabled {
		client, err := newSpeechClient(ctx, config.Speech, log)
		if err != nil {
			log.Fatal("preparing the speech client", zap.Error(err))
		}
		routerCfg.Speaker = client
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(config.Server.Listen, server.NewRouter(routerCfg), log)
	if err := srv.Run(ctx); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}

	log.Info("http server stopped")
}
