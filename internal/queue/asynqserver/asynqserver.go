package asynqserver

import (
	"github.com/hibiken/asynq"
	"github.com/tokenvault/backend/internal/cache"
	"github.com/tokenvault/backend/internal/config"
	"github.com/tokenvault/backend/internal/queue/processor"
	"github.com/tokenvault/backend/internal/queue/task"
	"github.com/tokenvault/backend/internal/worker"
)

func New(cfg config.Cache, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)
	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: 10,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{Addrs: cfg.RedisCluster.Addresses}
	} else {
		opts = asynq.RedisClientOpt{Addr: cfg.Redis.Address}
	}
	return opts
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendAuthEmailTaskName, processor.NewSendAuthEmailProcessor(workers))
	mux.Handle(task.EscrowNotificationTaskName, processor.NewEscrowNotificationProcessor(workers))
	mux.Handle(task.SettleEscrowTaskName, processor.NewSettleEscrowProcessor(workers))
	queues := map[string]int{
		task.EmailQueueName:      1,
		task.SettlementQueueName: 2,
	}
	return mux, queues
}
