package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	httpServer "LeadForge/api/http"
	"LeadForge/internal/config"
	"LeadForge/pkg/zlog"
)

func main() {
	conf := config.GetConfig()
	zlog.Init(conf.LogConfig.LogPath)
	defer zlog.Sync()

	engine, cleanup, err := httpServer.NewServer(context.Background(), conf)
	if err != nil {
		zlog.Fatal("server wiring failed: " + err.Error())
		return
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	go func() {
		zlog.Info("server starting, listening on " + addr)
		if err := engine.Run(addr); err != nil {
			zlog.Fatal("server start failed: " + err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
}
