package app

import (
	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/model"
	appsync "github.com/frezix0/TodoReact/internal/sync"
	"github.com/frezix0/TodoReact/internal/ui/settings"
)

// NewFromConfig builds the API client, both stores and the poller from
// cfg and returns the root model over them. Settings edited in the UI are
// saved to configPath.
func NewFromConfig(cfg model.AppConfig, configPath string, log logrus.FieldLogger) Model {
	gw := gateway.New(
		cfg.API.BaseURL,
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithLogger(log),
	)

	categories := appsync.NewCategoryStore(gw, log)
	todos := appsync.NewTodoStore(gw,
		appsync.WithTodoLogger(log),
		appsync.WithPerPage(cfg.API.PerPage),
		appsync.WithCountTracker(categories),
	)
	categories.LinkTodos(todos)

	poller := appsync.NewPoller(cfg.Sync.Interval, cfg.Sync.FetchTimeout, log)
	poller.Register(categories)
	poller.Register(todos)

	m := New(todos, categories, poller, log)
	m.config = cfg
	m.settingsView = settings.New(cfg, configPath, m.keys, 80, 24)
	return m
}
