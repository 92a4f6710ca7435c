package service

import (
	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/service/admin"
	"github.com/kirinyoku/tix-inventory/internal/service/changes"
	"github.com/kirinyoku/tix-inventory/internal/service/query"
	"github.com/kirinyoku/tix-inventory/internal/service/reservation"
	"github.com/kirinyoku/tix-inventory/internal/uow"
)

type Services struct {
	Reservation *reservation.Service
	Query       *query.Service
	Admin       *admin.Service
}

type Config struct {
	Query query.Config
}

type Deps struct {
	UoW    uow.Runner
	Reader query.Reader
	Cache  query.StatsCache
	Notify *changes.Notifier
	Clock  clock.Clock
}

func NewServices(deps Deps, cfg Config) *Services {
	return &Services{
		Reservation: reservation.New(deps.UoW, deps.Clock, deps.Notify),
		Query:       query.New(deps.Reader, deps.Cache, deps.Clock, cfg.Query),
		Admin:       admin.New(deps.UoW, deps.Clock, deps.Notify),
	}
}
