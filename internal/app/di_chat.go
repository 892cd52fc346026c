package app

import (
	"fmt"

	chatRepository "github.com/allisson/marketplace/internal/chat/repository"
	chatUsecase "github.com/allisson/marketplace/internal/chat/usecase"
)

// ChatRepository returns the chat repository instance.
func (c *Container) ChatRepository() (chatUsecase.ChatRepository, error) {
	c.chatRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["chatRepo"] = fmt.Errorf("failed to get database for chat repository: %w", err)
			return
		}
		c.chatRepo = chatRepository.NewPostgreSQLChatRepository(db)
	})
	if storedErr, exists := c.initErrors["chatRepo"]; exists {
		return nil, storedErr
	}
	return c.chatRepo, nil
}

// ChatUseCase returns the chat use case instance.
func (c *Container) ChatUseCase() (chatUsecase.UseCase, error) {
	c.chatUseCaseInit.Do(func() {
		chatRepo, err := c.ChatRepository()
		if err != nil {
			c.initErrors["chatUseCase"] = fmt.Errorf("failed to get chat repository for chat use case: %w", err)
			return
		}

		productRepo, err := c.ProductRepository()
		if err != nil {
			c.initErrors["chatUseCase"] = fmt.Errorf("failed to get product repository for chat use case: %w", err)
			return
		}

		c.chatUseCase = chatUsecase.NewChatUseCase(chatRepo, productRepo, c.Cache(), c.Logger())
	})
	if storedErr, exists := c.initErrors["chatUseCase"]; exists {
		return nil, storedErr
	}
	return c.chatUseCase, nil
}
