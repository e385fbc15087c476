//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/myenglish/internal/adapter/completion"
	"github.com/eslsoft/myenglish/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/myenglish/internal/adapter/repository"
	"github.com/eslsoft/myenglish/internal/infrastructure/config"
	"github.com/eslsoft/myenglish/internal/infrastructure/kvstore"
	"github.com/eslsoft/myenglish/internal/infrastructure/server"
	"github.com/eslsoft/myenglish/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var storeSet = wire.NewSet(
	kvstore.NewStore,
	adapterrepo.NewEntryStore,
	adapterrepo.NewHistoryLog,
)

var completionSet = wire.NewSet(
	completion.NewClient,
	completion.NewDispatcher,
)

var usecaseSet = wire.NewSet(
	usecase.NewVocabUsecase,
	usecase.NewReviewUsecase,
	usecase.NewLookupUsecase,
	usecase.NewChatUsecase,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	httpapi.NewRouter,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		storeSet,
		completionSet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server"),
	)
	return nil, nil, nil
}
