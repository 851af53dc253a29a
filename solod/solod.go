package solod

import (
	"context"
	"fmt"
	"time"

	"github.com/ccfos/solo/bus/redisbus"
	"github.com/ccfos/solo/conf"
	"github.com/ccfos/solo/elect"
	"github.com/ccfos/solo/elect/estats"
	"github.com/ccfos/solo/peers"
	"github.com/ccfos/solo/pkg/httpx"
	"github.com/ccfos/solo/pkg/logx"
	"github.com/ccfos/solo/router"
	"github.com/ccfos/solo/storage"

	"github.com/toolkits/pkg/logger"
)

// Initialize wires the whole daemon together and returns a cleanup func.
func Initialize(configDir string) (func(), error) {
	config, err := conf.InitConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init config: %v", err)
	}

	logxClean, err := logx.Init(config.Log)
	if err != nil {
		return nil, err
	}

	redis, err := storage.NewRedis(config.Redis)
	if err != nil {
		return nil, err
	}

	stats := estats.NewSyncStats()

	id := elect.NewPeerID()
	bus := redisbus.New(redis, config.Election.Channel)
	registry := peers.New(redis, id)

	callbacks := elect.Callbacks{
		// the exclusive resource should be acquired here; solo itself only
		// records the role and leaves ownership to the embedding side
		OnBecameLeader: func() {
			registry.SetRole(elect.RoleLeader.String())
		},
		OnBecameFollower: func() {
			registry.SetRole(elect.RoleFollower.String())
		},
	}

	elector := elect.New(id, config.Election, bus, callbacks, stats)
	if err := elector.Start(context.Background()); err != nil {
		return nil, err
	}

	r := httpx.GinEngine(config.Global.RunMode, config.HTTP)
	router.New(elector, registry).Config(r)

	httpClean := httpx.Init(config.HTTP, r)

	return func() {
		httpClean()

		elector.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := registry.Deregister(ctx); err != nil {
			logger.Warningf("failed to deregister peer: %v", err)
		}

		logxClean()
	}, nil
}
