package app

import (
	httpMW "github.com/fieldtrace/fieldtrace-backend/internal/http/middleware"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

type Middleware struct {
	Org *httpMW.OrgMiddleware
}

func wireMiddleware(log *logger.Logger) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Org: httpMW.NewOrgMiddleware(log),
	}
}
