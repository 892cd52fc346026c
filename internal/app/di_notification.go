package app

import (
	"fmt"

	"github.com/allisson/marketplace/internal/messaging"
	notificationConsumer "github.com/allisson/marketplace/internal/notification/consumer"
	notificationRepository "github.com/allisson/marketplace/internal/notification/repository"
	notificationUsecase "github.com/allisson/marketplace/internal/notification/usecase"
)

// NotificationRepository returns the notification repository instance.
func (c *Container) NotificationRepository() (notificationUsecase.NotificationRepository, error) {
	c.notificationRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["notificationRepo"] = fmt.Errorf("failed to get database for notification repository: %w", err)
			return
		}
		c.notificationRepo = notificationRepository.NewPostgreSQLNotificationRepository(db)
	})
	if storedErr, exists := c.initErrors["notificationRepo"]; exists {
		return nil, storedErr
	}
	return c.notificationRepo, nil
}

// NotificationUseCase returns the notification use case instance.
func (c *Container) NotificationUseCase() (notificationUsecase.UseCase, error) {
	c.notificationUseCaseInit.Do(func() {
		notificationRepo, err := c.NotificationRepository()
		if err != nil {
			c.initErrors["notificationUseCase"] = fmt.Errorf("failed to get notification repository for notification use case: %w", err)
			return
		}

		c.notificationUseCase = notificationUsecase.NewNotificationUseCase(notificationRepo, c.Logger())
	})
	if storedErr, exists := c.initErrors["notificationUseCase"]; exists {
		return nil, storedErr
	}
	return c.notificationUseCase, nil
}

// Consumer returns the order events consumer used by the notification worker.
func (c *Container) Consumer() (*notificationConsumer.OrderEventsConsumer, error) {
	c.consumerInit.Do(func() {
		if len(c.config.KafkaBrokerList()) == 0 {
			c.initErrors["consumer"] = fmt.Errorf("no kafka brokers configured, cannot start consumer")
			return
		}

		notificationUseCase, err := c.NotificationUseCase()
		if err != nil {
			c.initErrors["consumer"] = fmt.Errorf("failed to get notification use case for consumer: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["consumer"] = fmt.Errorf("failed to get business metrics for consumer: %w", err)
			return
		}

		reader := messaging.NewOrderEventsReader(c.config)
		c.consumer = notificationConsumer.NewOrderEventsConsumer(reader, notificationUseCase, businessMetrics, c.Logger())
	})
	if storedErr, exists := c.initErrors["consumer"]; exists {
		return nil, storedErr
	}
	return c.consumer, nil
}
