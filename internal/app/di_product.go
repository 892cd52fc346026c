package app

import (
	"fmt"

	productRepository "github.com/allisson/marketplace/internal/product/repository"
	productUsecase "github.com/allisson/marketplace/internal/product/usecase"
)

// ProductRepository returns the product repository instance.
func (c *Container) ProductRepository() (productUsecase.Repository, error) {
	c.productRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["productRepo"] = fmt.Errorf("failed to get database for product repository: %w", err)
			return
		}
		c.productRepo = productRepository.NewPostgreSQLProductRepository(db)
	})
	if storedErr, exists := c.initErrors["productRepo"]; exists {
		return nil, storedErr
	}
	return c.productRepo, nil
}

// ProductUseCase returns the product use case instance.
func (c *Container) ProductUseCase() (productUsecase.UseCase, error) {
	c.productUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["productUseCase"] = fmt.Errorf("failed to get tx manager for product use case: %w", err)
			return
		}

		productRepo, err := c.ProductRepository()
		if err != nil {
			c.initErrors["productUseCase"] = fmt.Errorf("failed to get product repository for product use case: %w", err)
			return
		}

		c.productUseCase = productUsecase.NewProductUseCase(txManager, productRepo, c.Cache(), c.Logger())
	})
	if storedErr, exists := c.initErrors["productUseCase"]; exists {
		return nil, storedErr
	}
	return c.productUseCase, nil
}
