package worker

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/docstream/cdc-worker/cdc"
)

var dependencies = fx.Provide(
	loggerProvider,
	configProvider,
	mongoClientProvider,
	watcherProvider,
	cdcConfigProvider,
	engineProvider,
	statusServerProvider,
)

var Modules = []fx.Option{
	dependencies,
}

func New() *fx.App {
	invokes := fx.Invoke(
		startEngine,
		startStatusServer,
	)
	return fx.New(append(Modules, invokes)...)
}

type Components struct {
	fx.In

	Engine       *cdc.Engine[Document]
	StatusServer *http.Server
	Logger       *zap.SugaredLogger
	Lifecycle    fx.Lifecycle
	Shutdowner   fx.Shutdowner
}

func startEngine(components Components) {
	cdc.AttachEngineHooks(components.Engine, components.Lifecycle)
}
