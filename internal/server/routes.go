package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/boardpulse/boardpulse/internal/api/v1"
	"github.com/boardpulse/boardpulse/internal/auth"
	"github.com/boardpulse/boardpulse/internal/notify"
	"github.com/boardpulse/boardpulse/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service, notifier notify.Publisher) {
	v1.RegisterMeRoute(api, authSvc)
	v1.RegisterUserRoutes(api, store)
	v1.RegisterBoardRoutes(api, store, notifier)
	v1.RegisterListRoutes(api, store)
	v1.RegisterTaskRoutes(api, store)
	v1.RegisterChatRoutes(api, store)
	v1.RegisterActivityRoutes(api, store)
}
