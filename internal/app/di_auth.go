package app

import (
	"fmt"

	authService "github.com/allisson/marketplace/internal/auth/service"
	authUsecase "github.com/allisson/marketplace/internal/auth/usecase"
	userRepository "github.com/allisson/marketplace/internal/user/repository"
)

// JWTService returns the JWT signing service.
func (c *Container) JWTService() *authService.JWTService {
	c.jwtServiceInit.Do(func() {
		c.jwtService = authService.NewJWTService(c.config)
	})
	return c.jwtService
}

// RefreshTokenStore returns the redis-backed refresh token store.
func (c *Container) RefreshTokenStore() *authService.RefreshTokenStore {
	c.refreshStoreInit.Do(func() {
		c.refreshStore = authService.NewRefreshTokenStore(c.Cache())
	})
	return c.refreshStore
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (authUsecase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}
		c.userRepo = userRepository.NewPostgreSQLUserRepository(db)
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// AuthUseCase returns the auth use case instance.
func (c *Container) AuthUseCase() (authUsecase.UseCase, error) {
	c.authUseCaseInit.Do(func() {
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["authUseCase"] = fmt.Errorf("failed to get user repository for auth use case: %w", err)
			return
		}

		useCase, err := authUsecase.NewAuthUseCase(userRepo, c.JWTService(), c.RefreshTokenStore())
		if err != nil {
			c.initErrors["authUseCase"] = fmt.Errorf("failed to create auth use case: %w", err)
			return
		}
		c.authUseCase = useCase
	})
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}
