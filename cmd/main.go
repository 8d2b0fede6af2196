package main

import (
	"fmt"

	"github.com/acecasino/payout_automation/internal/container"
	httpserver "github.com/acecasino/payout_automation/internal/presentation/http"
	"github.com/acecasino/payout_automation/pkg/logger"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Error loading .env file")
	}
}

func main() {
	logger.InitGlobalLogger()

	c, err := container.NewContainer()
	if err != nil {
		fmt.Println("main NewContainer error", err)
		panic(err)
	}

	if sendErr := c.Notifier.Send("Payout Automation Server Start"); sendErr != nil {
		logger.GetLogger().Warnf("Failed to send startup notification: %v", sendErr)
	}

	if c.Config.Automation.EnableScheduler {
		if err := c.Scheduler.Start(); err != nil {
			fmt.Println("main scheduler start error", err)
			panic(err)
		}
	}

	server := httpserver.NewServer(c)
	if err := server.Start(); err != nil {
		panic(err)
	}
}
