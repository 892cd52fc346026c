package app

import (
	"fmt"

	orderRepository "github.com/allisson/marketplace/internal/order/repository"
	orderUsecase "github.com/allisson/marketplace/internal/order/usecase"
	outboxRepository "github.com/allisson/marketplace/internal/outbox/repository"
	outboxUsecase "github.com/allisson/marketplace/internal/outbox/usecase"
)

// OrderRepository returns the order repository instance.
func (c *Container) OrderRepository() (orderUsecase.OrderRepository, error) {
	c.orderRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["orderRepo"] = fmt.Errorf("failed to get database for order repository: %w", err)
			return
		}
		c.orderRepo = orderRepository.NewPostgreSQLOrderRepository(db)
	})
	if storedErr, exists := c.initErrors["orderRepo"]; exists {
		return nil, storedErr
	}
	return c.orderRepo, nil
}

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	c.outboxRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["outboxRepo"] = fmt.Errorf("failed to get database for outbox repository: %w", err)
			return
		}
		c.outboxRepo = outboxRepository.NewPostgreSQLOutboxEventRepository(db)
	})
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OrderUseCase returns the order use case instance.
func (c *Container) OrderUseCase() (orderUsecase.UseCase, error) {
	c.orderUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["orderUseCase"] = fmt.Errorf("failed to get tx manager for order use case: %w", err)
			return
		}

		orderRepo, err := c.OrderRepository()
		if err != nil {
			c.initErrors["orderUseCase"] = fmt.Errorf("failed to get order repository for order use case: %w", err)
			return
		}

		productRepo, err := c.ProductRepository()
		if err != nil {
			c.initErrors["orderUseCase"] = fmt.Errorf("failed to get product repository for order use case: %w", err)
			return
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			c.initErrors["orderUseCase"] = fmt.Errorf("failed to get outbox repository for order use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["orderUseCase"] = fmt.Errorf("failed to get business metrics for order use case: %w", err)
			return
		}

		useCase := orderUsecase.NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo, c.Logger())
		c.orderUseCase = orderUsecase.NewOrderUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["orderUseCase"]; exists {
		return nil, storedErr
	}
	return c.orderUseCase, nil
}

// OutboxUseCase returns the outbox relay instance.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	c.outboxUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["outboxUseCase"] = fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
			return
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			c.initErrors["outboxUseCase"] = fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["outboxUseCase"] = fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
			return
		}

		useCaseConfig := outboxUsecase.Config{
			Interval:   c.config.OutboxInterval,
			BatchSize:  c.config.OutboxBatchSize,
			MaxRetries: c.config.OutboxMaxRetries,
		}

		c.outboxUseCase = outboxUsecase.NewOutboxUseCase(
			useCaseConfig,
			txManager,
			outboxRepo,
			c.Publisher(),
			businessMetrics,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}
