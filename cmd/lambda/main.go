package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/markup"
	"github.com/Bitlatte/portfolio/internal/server"
	"github.com/Bitlatte/portfolio/internal/site"
)

func main() {
	logger.Init(os.Stdout, os.Getenv("PORTFOLIO_DEBUG") != "", true)

	cfg, err := config.Load(os.Getenv("PORTFOLIO_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	adapter, err := newAdapter(cfg)
	if err != nil {
		logger.Error("failed to set up site", "error", err)
		os.Exit(1)
	}

	lambda.Start(adapter.ProxyWithContext)
}

// newAdapter serves the site's router to API Gateway proxy events.
func newAdapter(cfg *config.Config) (*httpadapter.HandlerAdapter, error) {
	s, err := site.New(cfg, content.NewStore(cfg.ContentDir, cfg.Extension), markup.New())
	if err != nil {
		return nil, err
	}
	return httpadapter.New(server.New(s).Routes()), nil
}
