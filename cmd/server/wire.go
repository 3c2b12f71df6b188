//go:build wireinject

package main

import (
	"docchat/chat-gateway/internal/domain"
	"docchat/chat-gateway/internal/infrastructure"
	"docchat/chat-gateway/internal/interfaces"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes"

	"github.com/google/wire"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
