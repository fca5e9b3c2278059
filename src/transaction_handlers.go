package main

import (
	"errors"
	"log"
	"net/http"

	"pms/src/types"
	"pms/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// transactionError maps workflow errors onto response codes: missing rows
// are 404, everything else in the state machine is the caller's fault.
func transactionError(ctx *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, types.ErrTokenNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var refErr *types.ReferenceNotFoundError
	var stateErr *types.InvalidStateError
	if errors.As(err, &refErr) || errors.As(err, &stateErr) || errors.Is(err, types.ErrAlreadyPaid) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("Transaction error: %s\n", err.Error())
	ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func transactionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/transactions", func(ctx *gin.Context) {
			var body types.OpenTransactionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			operatorId := ctx.GetUint("id")
			txn, err := utils.OpenTransaction(operatorId, &body)
			if err != nil {
				transactionError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": txn})
		}).
		GET("/transactions/search", func(ctx *gin.Context) {
			var query types.TransactionSearchQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			transactions, total, err := utils.SearchTransactions(&query)
			if err != nil {
				log.Printf("Error searching transactions: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": transactions, "total": total})
		}).
		GET("/transactions/:id", func(ctx *gin.Context) {
			var params types.TransactionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			txn, err := utils.GetTransaction(uuid.MustParse(params.ID))
			if err != nil {
				transactionError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txn})
		}).
		PUT("/transactions/:id", func(ctx *gin.Context) {
			var params types.TransactionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateTransactionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			operatorId := ctx.GetUint("id")
			txn, err := utils.UpdatePendingTransaction(uuid.MustParse(params.ID), operatorId, &body)
			if err != nil {
				transactionError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txn})
		}).
		POST("/transactions/:id/confirm", func(ctx *gin.Context) {
			var params types.TransactionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			operatorId := ctx.GetUint("id")
			pass, err := utils.ConfirmTransaction(uuid.MustParse(params.ID), operatorId)
			if err != nil {
				transactionError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": pass})
		})
	return g
}
