// Package container wires the application's dependency graph by hand:
// config, then infrastructure, then repositories, services, handlers.
package container

import (
	"context"
	"fmt"

	"moviehub-backend/internal/config"
	"moviehub-backend/pkg/database"
	"moviehub-backend/pkg/jwt"
	"moviehub-backend/pkg/logger"

	commentHandler "moviehub-backend/internal/domains/comment/handler"
	commentRepo "moviehub-backend/internal/domains/comment/repository"
	commentService "moviehub-backend/internal/domains/comment/service"
	movieHandler "moviehub-backend/internal/domains/movie/handler"
	movieRepo "moviehub-backend/internal/domains/movie/repository"
	movieService "moviehub-backend/internal/domains/movie/service"
	reviewHandler "moviehub-backend/internal/domains/review/handler"
	reviewRepo "moviehub-backend/internal/domains/review/repository"
	reviewService "moviehub-backend/internal/domains/review/service"
	userHandler "moviehub-backend/internal/domains/user/handler"
	userRepo "moviehub-backend/internal/domains/user/repository"
	userService "moviehub-backend/internal/domains/user/service"
)

type Container struct {
	Config     *config.Config
	DB         *database.DB
	JWTManager *jwt.Manager

	UserRepo    userRepo.UserRepository
	MovieRepo   movieRepo.MovieRepository
	ActorRepo   movieRepo.ActorRepository
	ReviewRepo  reviewRepo.ReviewRepository
	TagRepo     reviewRepo.TagRepository
	CommentRepo commentRepo.CommentRepository

	UserService    userService.ServiceInterface
	MovieService   movieService.ServiceInterface
	ReviewService  reviewService.ServiceInterface
	CommentService commentService.ServiceInterface

	UserHandler    *userHandler.UserHandler
	MovieHandler   *movieHandler.MovieHandler
	ReviewHandler  *reviewHandler.ReviewHandler
	CommentHandler *commentHandler.CommentHandler
}

// NewContainer builds the full graph. Initialization order matters:
// config first, then the database, then everything that reads from it.
func NewContainer(ctx context.Context) (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	logger.Info("connected to postgres", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Database,
	})

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	txManager := database.NewTxManager(db.Pool)

	c.UserRepo = userRepo.NewPostgresUserRepository(db.Pool)
	c.MovieRepo = movieRepo.NewPostgresMovieRepository(db.Pool)
	c.ActorRepo = movieRepo.NewPostgresActorRepository(db.Pool)
	c.ReviewRepo = reviewRepo.NewPostgresReviewRepository(db.Pool)
	c.TagRepo = reviewRepo.NewPostgresTagRepository(db.Pool)
	c.CommentRepo = commentRepo.NewPostgresCommentRepository(db.Pool)

	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.MovieService = movieService.NewMovieService(c.MovieRepo, c.ActorRepo, c.UserRepo, txManager)
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.TagRepo, c.CommentRepo, c.UserRepo, txManager)
	c.CommentService = commentService.NewCommentService(c.CommentRepo, c.ReviewRepo, c.UserRepo)

	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.MovieHandler = movieHandler.NewMovieHandler(c.MovieService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.CommentHandler = commentHandler.NewCommentHandler(c.CommentService)

	return c, nil
}

// Cleanup releases infrastructure resources, reverse of construction.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
		logger.Info("database connection closed", nil)
	}
}
