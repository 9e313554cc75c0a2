package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-crm-sync/internal/cli"
	"github.com/MKhiriev/go-crm-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	code := cli.Execute(ctx, info, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
