package utils

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const shutdownTimeout = 15 * time.Second

type ShutdownManager struct {
	cancelFunc    context.CancelFunc
	shutdownTasks []func(context.Context) error
	mu            sync.Mutex
}

func NewShutdownManager(ctx context.Context) (context.Context, *ShutdownManager) {
	ctx, cancel := context.WithCancel(ctx)
	manager := &ShutdownManager{
		cancelFunc: cancel,
	}
	return ctx, manager
}

func (sm *ShutdownManager) Register(task func(context.Context) error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.shutdownTasks = append(sm.shutdownTasks, task)
}

// Shutdown cancels the root context and runs every registered task in order.
func (sm *ShutdownManager) Shutdown(ctx context.Context) {
	sm.cancelFunc()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, task := range sm.shutdownTasks {
		if err := task(ctx); err != nil {
			log.Printf("[SHUTDOWN] Error during shutdown: %v", err)
		}
	}
}

func (sm *ShutdownManager) StartListening() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("[SHUTDOWN] Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		sm.Shutdown(ctx)

		log.Println("[SHUTDOWN] Graceful shutdown complete")
		os.Exit(0)
	}()
}
