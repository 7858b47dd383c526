package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcosta/btcfolio-backend/internal/usecase/auth"
	"github.com/mcosta/btcfolio-backend/internal/usecase/portfolios"
	"github.com/mcosta/btcfolio-backend/internal/usecase/transactions"
)

// NewPortfolioRouter builds the portfolio service HTTP API.
func NewPortfolioRouter(
	authService *auth.Service,
	portfolioService *portfolios.Service,
	transactionService *transactions.Service,
) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/register", registerHandler(authService))
	router.POST("/auth/login", loginHandler(authService))

	authed := router.Group("/")
	authed.Use(AuthRequired(authService))
	{
		authed.POST("/portfolios", createPortfolio(portfolioService))
		authed.GET("/portfolios", listPortfolios(portfolioService))
		authed.GET("/portfolios/:id", getPortfolio(portfolioService))
		authed.PUT("/portfolios/:id", updatePortfolio(portfolioService))
		authed.DELETE("/portfolios/:id", deletePortfolio(portfolioService))

		authed.POST("/portfolios/:id/transactions", createTransaction(transactionService))
		authed.GET("/portfolios/:id/transactions", listTransactions(transactionService))
		authed.GET("/portfolios/:id/transactions/:txID", getTransaction(transactionService))
		authed.PUT("/portfolios/:id/transactions/:txID", updateTransaction(transactionService))
		authed.DELETE("/portfolios/:id/transactions/:txID", deleteTransaction(transactionService))
	}

	return router
}

type credentialsInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func registerHandler(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input credentialsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := authService.Register(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func loginHandler(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input credentialsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		token, err := authService.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
	}
}

type portfolioInput struct {
	Name    string          `json:"name" binding:"required"`
	GoalUSD decimal.Decimal `json:"goal_usd"`
}

func createPortfolio(service *portfolios.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input portfolioInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		portfolio, err := service.Create(c.Request.Context(), ownerID(c), portfolios.CreateInput{
			Name:    input.Name,
			GoalUSD: input.GoalUSD,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, portfolio)
	}
}

func listPortfolios(service *portfolios.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := service.List(c.Request.Context(), ownerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// getPortfolio returns the portfolio detail view with valuation metrics.
func getPortfolio(service *portfolios.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		detail, err := service.GetWithMetrics(c.Request.Context(), ownerID(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func updatePortfolio(service *portfolios.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		var input portfolioInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		portfolio, err := service.Update(c.Request.Context(), ownerID(c), id, portfolios.CreateInput{
			Name:    input.Name,
			GoalUSD: input.GoalUSD,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, portfolio)
	}
}

func deletePortfolio(service *portfolios.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		if err := service.Delete(c.Request.Context(), ownerID(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type transactionInput struct {
	BTCAmount string `json:"btc_amount" binding:"required"`
	// Timestamp is the requested purchase instant; the stored hour comes
	// from the candle it resolves to.
	Timestamp time.Time `json:"timestamp" binding:"required"`
	// PortfolioID optionally moves the transaction on update.
	PortfolioID *uuid.UUID `json:"portfolio_id,omitempty"`
}

func createTransaction(service *transactions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		portfolioID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		var input transactionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tx, err := service.Create(c.Request.Context(), ownerID(c), transactions.CreateInput{
			PortfolioID: portfolioID,
			BTCAmount:   input.BTCAmount,
			Timestamp:   input.Timestamp,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, tx)
	}
}

func listTransactions(service *transactions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		portfolioID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		items, err := service.List(c.Request.Context(), ownerID(c), portfolioID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func getTransaction(service *transactions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		portfolioID, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		txID, ok := pathUUID(c, "txID")
		if !ok {
			return
		}

		tx, err := service.Get(c.Request.Context(), ownerID(c), portfolioID, txID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tx)
	}
}

func updateTransaction(service *transactions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		portfolioID, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		txID, ok := pathUUID(c, "txID")
		if !ok {
			return
		}

		var input transactionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tx, err := service.Update(c.Request.Context(), ownerID(c), transactions.UpdateInput{
			PortfolioID:    portfolioID,
			TransactionID:  txID,
			BTCAmount:      input.BTCAmount,
			Timestamp:      input.Timestamp,
			NewPortfolioID: input.PortfolioID,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tx)
	}
}

func deleteTransaction(service *transactions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		portfolioID, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		txID, ok := pathUUID(c, "txID")
		if !ok {
			return
		}

		if err := service.Delete(c.Request.Context(), ownerID(c), portfolioID, txID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// pathUUID parses a UUID path parameter, writing the 400 itself on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}
